package entity

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStageContext_NilSafe(t *testing.T) {
	var sc *StageContext
	sc.PutImage("mask", image.NewGray(image.Rect(0, 0, 1, 1)))
	sc.Put("lines", 4)

	_, ok := sc.Image("mask")
	require.False(t, ok)
	_, ok = sc.Get("lines")
	require.False(t, ok)
	require.Nil(t, sc.ImageNames())
}

func TestStageContext_KeepsInsertionOrder(t *testing.T) {
	sc := NewStageContext()
	sc.PutImage("canny", image.NewGray(image.Rect(0, 0, 1, 1)))
	sc.PutImage("dog", image.NewGray(image.Rect(0, 0, 1, 1)))
	sc.PutImage("canny", image.NewGray(image.Rect(0, 0, 2, 2)))

	require.Equal(t, []string{"canny", "dog"}, sc.ImageNames())
	img, ok := sc.Image("canny")
	require.True(t, ok)
	require.Equal(t, 2, img.Bounds().Dx())
}
