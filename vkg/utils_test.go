package vkg

import (
	"log/slog"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	vk "github.com/vulkan-go/vulkan"
)

func TestSafeString(t *testing.T) {
	assert.Equal(t, "\x00", safeString(""))
	assert.Equal(t, "main\x00", safeString("main"))
	assert.Equal(t, "main\x00", safeString("main\x00"))
	assert.Equal(t, []string{"a\x00", "b\x00"}, safeStrings([]string{"a", "b\x00"}))
}

func TestToBytes(t *testing.T) {
	words := []uint32{0x04030201, 0}
	b := ToBytes(unsafe.Pointer(&words[0]), 8)
	assert.Len(t, b, 8)
	b[4] = 0xff
	assert.Equal(t, uint32(0xff), words[1]&0xff)
}

func TestSPIRVWords(t *testing.T) {
	_, err := spirvWords([]byte{1, 2, 3})
	assert.ErrorIs(t, err, errBadSPIRV)

	_, err = spirvWords(make([]byte, 8))
	assert.ErrorIs(t, err, errBadSPIRV)

	code := ToBytes(unsafe.Pointer(&[]uint32{spirvMagic, 0x00010000}[0]), 8)
	words, err := spirvWords(code)
	assert.NoError(t, err)
	assert.Equal(t, []uint32{spirvMagic, 0x00010000}, words)
}

func TestDebugReportLevel(t *testing.T) {
	assert.Equal(t, slog.LevelError, debugReportLevel(vk.DebugReportFlags(vk.DebugReportErrorBit|vk.DebugReportWarningBit)))
	assert.Equal(t, slog.LevelWarn, debugReportLevel(vk.DebugReportFlags(vk.DebugReportPerformanceWarningBit)))
	assert.Equal(t, slog.LevelDebug, debugReportLevel(vk.DebugReportFlags(vk.DebugReportDebugBit)))
	assert.Equal(t, slog.LevelInfo, debugReportLevel(vk.DebugReportFlags(vk.DebugReportInformationBit)))
}
