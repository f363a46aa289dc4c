package qr

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"time"

	"github.com/skip2/go-qrcode"

	"ms-booking/internal/models"
)

// confirmation is the payload baked into a booking QR code. It carries just
// enough to verify a reservation at the door.
type confirmation struct {
	BookingID string    `json:"booking_id"`
	EventID   string    `json:"event_id"`
	UserID    string    `json:"user_id"`
	NumSeats  int       `json:"numseats"`
	IssuedAt  time.Time `json:"issued_at"`
}

type QRGenerator struct {
	secret []byte
}

func NewQRGenerator(secret string) *QRGenerator {
	hashed := sha256.Sum256([]byte(secret)) // normalize to 32 bytes
	return &QRGenerator{secret: hashed[:]}
}

// GenerateEncryptedQR encodes an encrypted booking confirmation as a PNG QR
// image.
func (q *QRGenerator) GenerateEncryptedQR(booking models.Booking) ([]byte, error) {
	payload := confirmation{
		BookingID: booking.BookingID,
		EventID:   booking.EventID,
		UserID:    booking.UserID,
		NumSeats:  booking.NumSeats,
		IssuedAt:  time.Now().UTC(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	encrypted, err := encryptAES(data, q.secret)
	if err != nil {
		return nil, err
	}

	return qrcode.Encode(encrypted, qrcode.Medium, 256)
}

func encryptAES(data, key []byte) (string, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}

	ciphertext := make([]byte, aes.BlockSize+len(data))
	iv := ciphertext[:aes.BlockSize]
	if _, err := io.ReadFull(rand.Reader, iv); err != nil {
		return "", err
	}

	stream := cipher.NewCFBEncrypter(block, iv)
	stream.XORKeyStream(ciphertext[aes.BlockSize:], data)

	return base64.URLEncoding.EncodeToString(ciphertext), nil
}
