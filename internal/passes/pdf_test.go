package passes_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"ms-boxoffice/internal/config"
	"ms-boxoffice/internal/models"
	"ms-boxoffice/internal/passes"
)

func TestExportFailsWithMissingFont(t *testing.T) {
	exporter := passes.NewPDFExporter(config.EventConfig{Title: "Dinali 2026"}, "/nonexistent/font.ttf")

	_, err := exporter.Export(models.Ticket{
		ID:          "DINALI-26-148-A1B2C",
		NumberRange: "146 - 148",
		GuestName:   "Smith Family",
		Quantity:    3,
		TotalPrice:  120,
		IssuedAt:    time.Now(),
	}, nil)

	assert.ErrorContains(t, err, "failed to load font")
}
