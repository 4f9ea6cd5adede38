package telegram

import (
	"errors"
	"fmt"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/require"

	"window-measure/internal/domain/entity"
)

func TestParseMarkerArgs_SizeOnlyKeepsRest(t *testing.T) {
	current := entity.MarkerConfig{SizeMM: 100, ID: 3, Count: 1, Family: entity.FamilyAprilTag16h5}

	cfg, err := parseMarkerArgs("150", current)
	require.NoError(t, err)
	require.Equal(t, entity.MarkerConfig{SizeMM: 150, ID: 3, Count: 1, Family: entity.FamilyAprilTag16h5}, cfg)
}

func TestParseMarkerArgs_AllFields(t *testing.T) {
	cfg, err := parseMarkerArgs(" 120  2 AprilTag 7 ", entity.DefaultMarkerConfig())
	require.NoError(t, err)
	require.Equal(t, entity.MarkerConfig{SizeMM: 120, ID: 7, Count: 2, Family: entity.FamilyAprilTag16h5}, cfg)
}

func TestParseMarkerArgs_Invalid(t *testing.T) {
	def := entity.DefaultMarkerConfig()
	for _, args := range []string{"", "abc", "100 3", "100 x", "100 1 qr", "100 1 aruco -1", "1 2 3 4 5", "0"} {
		cfg, err := parseMarkerArgs(args, def)
		require.Error(t, err, args)
		require.Equal(t, def, cfg, args)
	}
}

func TestFormatResult_PartialWarning(t *testing.T) {
	full := formatResult(entity.Dimensions{WidthIn: 36.5, HeightIn: 48, Confidence: entity.ConfidenceFull})
	require.Contains(t, full, "36.50")
	require.Contains(t, full, "48.00")
	require.NotContains(t, full, "неточным")

	partial := formatResult(entity.Dimensions{WidthIn: 1, HeightIn: 2, Confidence: entity.ConfidencePartial})
	require.Contains(t, partial, "неточным")
}

func TestFormatError_MarkerDetails(t *testing.T) {
	notFound := fmt.Errorf("scale: %w", &entity.MarkerDetectionError{
		Kind: entity.ErrMarkerNotFound, ExpectedCount: 1, DetectedCount: 2, ExpectedID: 5, DetectedIDs: []int{1, 2},
	})
	text := formatError(notFound)
	require.Contains(t, text, "ID 5")
	require.Contains(t, text, "(ID: 1, 2)")

	mismatch := &entity.MarkerDetectionError{
		Kind: entity.ErrMarkerCountMismatch, ExpectedCount: 2, DetectedCount: 1, ExpectedID: -1, DetectedIDs: []int{4},
	}
	text = formatError(mismatch)
	require.Contains(t, text, "Ожидалось маркеров: 2, найдено: 1")

	none := &entity.MarkerDetectionError{Kind: entity.ErrMarkerNotFound, ExpectedCount: 2, ExpectedID: -1}
	require.Contains(t, formatError(none), "Маркеры не найдены")
}

func TestFormatError_Kinds(t *testing.T) {
	require.Contains(t, formatError(&entity.LineError{Found: 2, Required: 4}), "найдено линий 2 из 4")
	require.Contains(t, formatError(&entity.QuadFitError{Reason: "x"}), "контур")
	require.Contains(t, formatError(entity.ErrDegenerateScale), "масштаб")
	require.Contains(t, formatError(entity.ErrBackendUnavailable), "недоступно")
	require.Equal(t, msgProcessingError, formatError(errors.New("boom")))
}

func TestImageFileID(t *testing.T) {
	msg := &tgbotapi.Message{Photo: []tgbotapi.PhotoSize{{FileID: "small"}, {FileID: "large"}}}
	id, ok := imageFileID(msg)
	require.True(t, ok)
	require.Equal(t, "large", id)

	msg = &tgbotapi.Message{Document: &tgbotapi.Document{FileID: "doc", MimeType: "image/jpeg"}}
	id, ok = imageFileID(msg)
	require.True(t, ok)
	require.Equal(t, "doc", id)

	_, ok = imageFileID(&tgbotapi.Message{Document: &tgbotapi.Document{FileID: "pdf", MimeType: "application/pdf"}})
	require.False(t, ok)
	_, ok = imageFileID(&tgbotapi.Message{Text: "hi"})
	require.False(t, ok)
}
