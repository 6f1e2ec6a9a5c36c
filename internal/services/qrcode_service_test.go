package services

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestQRCodeService() *QRCodeService {
	return &QRCodeService{
		size: 128,
		now:  func() time.Time { return testNow },
	}
}

func TestQRCodeService_EncodePayloadShape(t *testing.T) {
	member := activeMember(7, 3, "MEM001", "张 伟")

	qr, err := newTestQRCodeService().Encode(member)
	assert.NoError(t, err)

	// 已打印的二维码依赖这个JSON形状，字段不能改名
	var payload map[string]string
	assert.NoError(t, json.Unmarshal([]byte(qr.Payload), &payload))
	assert.Equal(t, "gym_attendance", payload["type"])
	assert.Equal(t, "MEM001", payload["member_id"])
	assert.Equal(t, "3", payload["gym_id"])
	assert.Equal(t, "张 伟", payload["name"])
	assert.Equal(t, testNow.Format(time.RFC3339), payload["generated_at"])

	assert.True(t, strings.HasPrefix(qr.ImageDataURI, "data:image/png;base64,"))
}

func TestQRCodeService_EncodeDecodeRoundTrip(t *testing.T) {
	member := activeMember(7, 3, "MEM001", "张 伟")

	qr, err := newTestQRCodeService().Encode(member)
	assert.NoError(t, err)

	code, gymID := DecodeScanInput(qr.Payload)
	assert.Equal(t, "MEM001", code)
	assert.Equal(t, uint(3), gymID)
}

func TestQRCodeService_RenderFailureFallsBackToPlaceholder(t *testing.T) {
	// 载荷超出二维码容量时渲染失败，返回占位图而不是错误
	member := activeMember(7, 3, "MEM001", strings.Repeat("超", 2000))

	qr, err := newTestQRCodeService().Encode(member)
	assert.NoError(t, err)
	assert.NotEmpty(t, qr.Payload)
	assert.Equal(t, placeholderImageDataURI, qr.ImageDataURI)
}

func TestDecodeScanInput_RawCodeFallback(t *testing.T) {
	code, gymID := DecodeScanInput("  MEM001  ")
	assert.Equal(t, "MEM001", code)
	assert.Equal(t, uint(0), gymID)
}

func TestDecodeScanInput_ForeignJSONFallsBack(t *testing.T) {
	// 不是考勤载荷的JSON整体按手工编号处理
	input := `{"type":"coupon","id":"42"}`
	code, gymID := DecodeScanInput(input)
	assert.Equal(t, input, code)
	assert.Equal(t, uint(0), gymID)
}

func TestDecodeScanInput_ToleratesUnknownFields(t *testing.T) {
	// 新版本的码可能多带字段，旧服务端也要能解析
	input := `{"type":"gym_attendance","member_id":"MEM001","gym_id":"3","name":"张 伟","generated_at":"2026-03-10T14:30:00Z","version":2}`
	code, gymID := DecodeScanInput(input)
	assert.Equal(t, "MEM001", code)
	assert.Equal(t, uint(3), gymID)
}

func TestDecodeScanInput_BadGymIDIgnored(t *testing.T) {
	input := `{"type":"gym_attendance","member_id":"MEM001","gym_id":"not-a-number"}`
	code, gymID := DecodeScanInput(input)
	assert.Equal(t, "MEM001", code)
	assert.Equal(t, uint(0), gymID)
}
