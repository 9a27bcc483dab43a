package services

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	"github.com/oopsmv/backend/internal/config"
	"github.com/oopsmv/backend/internal/models"
	qrcode "github.com/skip2/go-qrcode"
)

// ErrNoYoutubeID is returned when a share sheet is requested for a track
// without a YouTube video.
var ErrNoYoutubeID = errors.New("music has no youtube video")

type ShareService struct {
	cfg *config.Config
}

func NewShareService(cfg *config.Config) *ShareService { return &ShareService{cfg: cfg} }

// MusicSharePDF renders an A4 PDF with the track metadata and a QR code
// pointing at its YouTube watch URL.
func (s *ShareService) MusicSharePDF(music *models.Music) ([]byte, error) {
	if music.YoutubeID == "" {
		return nil, ErrNoYoutubeID
	}
	watchURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", music.YoutubeID)

	png, err := qrcode.Encode(watchURL, qrcode.Medium, 512)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, music.Title)
	pdf.Ln(12)
	pdf.SetFont("Arial", "", 12)
	pdf.MultiCell(0, 6, fmt.Sprintf("Artist: %s\nURL: %s", music.Artist, watchURL), "", "L", false)

	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("qr", opt, bytes.NewReader(png))

	// Center QR on the page (A4 width 210mm, QR size 100mm)
	x := (210.0 - 100.0) / 2.0
	y := pdf.GetY() + 10
	pdf.ImageOptions("qr", x, y, 100, 100, false, opt, 0, "")

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
