package services

import (
	"encoding/base64"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"gymhub/internal/models"
	"gymhub/pkg/config"
	"gymhub/pkg/logger"

	"github.com/skip2/go-qrcode"
)

// QRPayloadType 考勤二维码的类型标识
const QRPayloadType = "gym_attendance"

// QRPayload 考勤二维码载荷 - 已打印的二维码必须保持可扫，字段形状不能破坏兼容
type QRPayload struct {
	Type        string `json:"type"`
	MemberID    string `json:"member_id"` // 会员编号（非内部ID）
	GymID       string `json:"gym_id"`
	Name        string `json:"name"`
	GeneratedAt string `json:"generated_at"`
}

// MemberQRCode 编码结果
type MemberQRCode struct {
	Payload      string `json:"payload"`        // 序列化后的载荷JSON
	ImageDataURI string `json:"image_data_uri"` // PNG图片的data URI
}

// 渲染失败时使用的占位图（1x1灰色PNG），扫码界面不能因图片管线故障而崩溃
const placeholderImageDataURI = "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAYAAAAfFcSJAAAADUlEQVR42mNsaGioBwAFxAH9ScIH0QAAAABJRU5ErkJggg=="

// QRCodeService 考勤二维码编解码服务
type QRCodeService struct {
	size int
	now  func() time.Time
}

// NewQRCodeService 创建二维码服务
func NewQRCodeService() *QRCodeService {
	cfg := config.GetConfig()
	size := cfg.Attendance.QRCodeSize
	if size <= 0 {
		size = 256
	}
	return &QRCodeService{
		size: size,
		now:  time.Now,
	}
}

// Encode 为会员生成考勤二维码
func (s *QRCodeService) Encode(member *models.Member) (*MemberQRCode, error) {
	payload := QRPayload{
		Type:        QRPayloadType,
		MemberID:    member.Code,
		GymID:       strconv.FormatUint(uint64(member.GymID), 10),
		Name:        member.Name,
		GeneratedAt: s.now().Format(time.RFC3339),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	result := &MemberQRCode{Payload: string(data)}

	png, err := qrcode.Encode(string(data), qrcode.Medium, s.size)
	if err != nil {
		// 渲染失败降级为占位图
		logger.GetLogger().Warnf("QR image rendering failed for member %s: %v", member.Code, err)
		result.ImageDataURI = placeholderImageDataURI
		return result, nil
	}

	result.ImageDataURI = "data:image/png;base64," + base64.StdEncoding.EncodeToString(png)
	return result, nil
}

// DecodeScanInput 解析扫码输入：是考勤二维码载荷则取出会员编号和场馆ID，
// 否则整个字符串按手工输入的会员编号处理（gymID返回0表示载荷未携带场馆）
func DecodeScanInput(input string) (code string, gymID uint) {
	trimmed := strings.TrimSpace(input)

	var payload QRPayload
	if err := json.Unmarshal([]byte(trimmed), &payload); err != nil {
		return trimmed, 0
	}
	if payload.Type != QRPayloadType {
		return trimmed, 0
	}

	if id, err := strconv.ParseUint(payload.GymID, 10, 32); err == nil {
		gymID = uint(id)
	}
	return payload.MemberID, gymID
}
