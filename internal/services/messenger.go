package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"prospector/internal/models"

	"github.com/skip2/go-qrcode"
)

// ErrNoPairingCode is returned when the session is already linked and the
// provider has no code to show.
var ErrNoPairingCode = errors.New("no pairing code available")

// Messenger delivers a single text message to a phone number in dispatch form.
type Messenger interface {
	SendText(ctx context.Context, phone, text string) error
}

// Linker exposes the pairing state of the WhatsApp session behind a Messenger.
type Linker interface {
	Status(ctx context.Context) (models.ConnectionStatus, error)
	PairingCode(ctx context.Context) (string, error)
}

type LinkedMessenger interface {
	Messenger
	Linker
}

// QRCodeDataURL renders a pairing code as a PNG data URL.
func QRCodeDataURL(code string) (string, error) {
	png, err := qrcode.Encode(code, qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("error generating qr code: %w", err)
	}
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(png), nil
}
