package services

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image/png"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/platebite/backend/internal/loyalty"
	"github.com/skip2/go-qrcode"
	"github.com/spf13/viper"
)

// VoucherService issues single-use QR vouchers for completed redemptions so a
// reward can be presented at the counter. Voucher state lives in Redis with a
// TTL; claiming deletes the key.
type VoucherService struct {
	accounts *loyalty.AccountService
	redis    *redis.Client
	ttl      time.Duration
}

func NewVoucherService(accounts *loyalty.AccountService, redisClient *redis.Client) *VoucherService {
	viper.SetDefault("loyalty.voucher_ttl", 15*time.Minute)
	return &VoucherService{
		accounts: accounts,
		redis:    redisClient,
		ttl:      viper.GetDuration("loyalty.voucher_ttl"),
	}
}

// Voucher is the claimable payload encoded into the QR code.
type Voucher struct {
	RedemptionID string    `json:"redemptionId"`
	AccountID    string    `json:"accountId"`
	RewardType   string    `json:"rewardType"`
	PointsUsed   int64     `json:"pointsUsed"`
	Nonce        string    `json:"nonce"`
	IssuedAt     time.Time `json:"issuedAt"`
}

// IssueVoucher generates a QR voucher for an existing redemption. Returns the
// opaque voucher code and a base64 PNG of the QR image.
func (s *VoucherService) IssueVoucher(ctx context.Context, redemptionID string) (string, string, error) {
	if s.redis == nil {
		return "", "", fmt.Errorf("voucher store not configured")
	}

	red, err := s.accounts.GetRedemption(ctx, redemptionID)
	if err != nil {
		return "", "", err
	}

	voucher := Voucher{
		RedemptionID: red.ID,
		AccountID:    red.AccountID,
		RewardType:   red.RewardType,
		PointsUsed:   red.PointsUsed,
		Nonce:        generateNonce(),
		IssuedAt:     time.Now().UTC(),
	}

	payload, err := json.Marshal(voucher)
	if err != nil {
		return "", "", err
	}

	code := base64.URLEncoding.EncodeToString(payload)

	key := fmt.Sprintf("loyalty:voucher:%s", code)
	if err := s.redis.Set(ctx, key, payload, s.ttl).Err(); err != nil {
		return "", "", err
	}

	qr, err := qrcode.New(code, qrcode.Medium)
	if err != nil {
		return "", "", err
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(256)); err != nil {
		return "", "", err
	}

	log.Printf("[VOUCHER] Issued voucher for redemption %s (%s)", red.ID, red.RewardType)
	return code, base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// ClaimVoucher redeems a voucher code. Single use: GETDEL fetches and removes
// the stored voucher in one atomic command, so of two concurrent claims only
// one can receive the payload.
func (s *VoucherService) ClaimVoucher(ctx context.Context, code string) (*Voucher, error) {
	if s.redis == nil {
		return nil, fmt.Errorf("voucher store not configured")
	}

	key := fmt.Sprintf("loyalty:voucher:%s", code)
	data, err := s.redis.GetDel(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, fmt.Errorf("invalid or expired voucher")
	}
	if err != nil {
		return nil, err
	}

	var voucher Voucher
	if err := json.Unmarshal(data, &voucher); err != nil {
		return nil, err
	}

	log.Printf("[VOUCHER] Claimed voucher for redemption %s", voucher.RedemptionID)
	return &voucher, nil
}

func generateNonce() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
