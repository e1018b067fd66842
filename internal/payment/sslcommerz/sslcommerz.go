package sslcommerz

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/haatbazar/internal/constants"
)

const (
	sandboxBaseURL    = "https://sandbox.sslcommerz.com"
	productionBaseURL = "https://securepay.sslcommerz.com"

	sessionPath    = "/gwprocess/v4/api.php"
	validationPath = "/validator/api/validationserverAPI.php"
)

var (
	ErrConfigInvalid    = errors.New("sslcommerz config invalid")
	ErrRequestFailed    = errors.New("sslcommerz request failed")
	ErrResponseInvalid  = errors.New("sslcommerz response invalid")
	ErrSessionRejected  = errors.New("sslcommerz session rejected")
	ErrSignatureInvalid = errors.New("sslcommerz signature invalid")
)

// Config 网关配置
type Config struct {
	StoreID       string `json:"store_id"`       // 商户标识
	StorePassword string `json:"store_password"` // 商户密钥
	Sandbox       bool   `json:"sandbox"`        // 是否沙箱环境
	BaseURL       string `json:"base_url"`       // 网关地址覆盖（为空时按沙箱/生产选择）
	SuccessURL    string `json:"success_url"`    // 支付成功跳转地址
	FailURL       string `json:"fail_url"`       // 支付失败跳转地址
	CancelURL     string `json:"cancel_url"`     // 支付取消跳转地址
	IPNURL        string `json:"ipn_url"`        // 异步通知地址
}

// ValidateConfig 校验网关配置完整性
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.StoreID) == "" {
		return fmt.Errorf("%w: store_id is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.StorePassword) == "" {
		return fmt.Errorf("%w: store_password is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.SuccessURL) == "" {
		return fmt.Errorf("%w: success_url is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.FailURL) == "" {
		return fmt.Errorf("%w: fail_url is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.CancelURL) == "" {
		return fmt.Errorf("%w: cancel_url is required", ErrConfigInvalid)
	}
	return nil
}

func (c *Config) baseURL() string {
	if override := strings.TrimSpace(c.BaseURL); override != "" {
		return strings.TrimSuffix(override, "/")
	}
	if c.Sandbox {
		return sandboxBaseURL
	}
	return productionBaseURL
}

// CreateInput 发起支付会话输入
type CreateInput struct {
	OrderNo       string
	Amount        string
	Currency      string
	ProductName   string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	AddressLine   string
	City          string
	PostalCode    string
	Country       string
}

// CreateResult 支付会话结果
type CreateResult struct {
	SessionKey     string
	GatewayPageURL string
	Raw            map[string]interface{}
}

// CreateSession 向网关发起支付会话
func CreateSession(ctx context.Context, cfg *Config, input CreateInput) (*CreateResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if input.OrderNo == "" || input.Amount == "" {
		return nil, ErrConfigInvalid
	}
	if input.Currency == "" {
		input.Currency = "BDT"
	}
	if input.Country == "" {
		input.Country = "Bangladesh"
	}
	if input.ProductName == "" {
		input.ProductName = input.OrderNo
	}

	params := map[string]string{
		"store_id":         cfg.StoreID,
		"store_passwd":     cfg.StorePassword,
		"tran_id":          input.OrderNo,
		"total_amount":     input.Amount,
		"currency":         input.Currency,
		"success_url":      cfg.SuccessURL,
		"fail_url":         cfg.FailURL,
		"cancel_url":       cfg.CancelURL,
		"ipn_url":          cfg.IPNURL,
		"product_name":     input.ProductName,
		"product_category": "general",
		"product_profile":  "general",
		"shipping_method":  "Courier",
		"cus_name":         input.CustomerName,
		"cus_email":        input.CustomerEmail,
		"cus_phone":        input.CustomerPhone,
		"cus_add1":         input.AddressLine,
		"cus_city":         input.City,
		"cus_postcode":     input.PostalCode,
		"cus_country":      input.Country,
		"ship_name":        input.CustomerName,
		"ship_add1":        input.AddressLine,
		"ship_city":        input.City,
		"ship_postcode":    input.PostalCode,
		"ship_country":     input.Country,
	}

	respBytes, err := postForm(ctx, cfg.baseURL()+sessionPath, params)
	if err != nil {
		return nil, ErrRequestFailed
	}

	var raw map[string]interface{}
	_ = json.Unmarshal(respBytes, &raw)
	var resp struct {
		Status         string `json:"status"`
		FailedReason   string `json:"failedreason"`
		SessionKey     string `json:"sessionkey"`
		GatewayPageURL string `json:"GatewayPageURL"`
	}
	if err := json.Unmarshal(respBytes, &resp); err != nil {
		return nil, ErrResponseInvalid
	}
	if !strings.EqualFold(resp.Status, "SUCCESS") {
		return nil, fmt.Errorf("%w: %s", ErrSessionRejected, resp.FailedReason)
	}
	if strings.TrimSpace(resp.GatewayPageURL) == "" {
		return nil, ErrResponseInvalid
	}
	return &CreateResult{
		SessionKey:     strings.TrimSpace(resp.SessionKey),
		GatewayPageURL: strings.TrimSpace(resp.GatewayPageURL),
		Raw:            raw,
	}, nil
}

// VerifyCallback 验证回调签名
// verify_key 给出参与签名的字段名，补上 md5(store_passwd) 后按字典序拼接再取 MD5
func VerifyCallback(cfg *Config, form url.Values) error {
	if cfg == nil {
		return ErrConfigInvalid
	}
	sign := strings.TrimSpace(form.Get("verify_sign"))
	verifyKey := strings.TrimSpace(form.Get("verify_key"))
	if sign == "" || verifyKey == "" {
		return ErrSignatureInvalid
	}

	params := make(map[string]string)
	for _, key := range strings.Split(verifyKey, ",") {
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		params[key] = form.Get(key)
	}
	params["store_passwd"] = signMD5(cfg.StorePassword)

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, params[k]))
	}
	expected := signMD5(strings.Join(pairs, "&"))
	if !strings.EqualFold(expected, sign) {
		return ErrSignatureInvalid
	}
	return nil
}

// ValidationResult 交易校验结果
type ValidationResult struct {
	Status      string
	TranID      string
	ValID       string
	Amount      string
	Currency    string
	BankTranID  string
	CardType    string
	StoreAmount string
	Raw         map[string]interface{}
}

// Valid 判断网关侧交易是否有效
func (r *ValidationResult) Valid() bool {
	return r != nil &&
		(strings.EqualFold(r.Status, constants.SSLCommerzStatusValid) ||
			strings.EqualFold(r.Status, constants.SSLCommerzStatusValidated))
}

// ValidateTransaction 调用网关校验接口确认交易
func ValidateTransaction(ctx context.Context, cfg *Config, valID string) (*ValidationResult, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	if strings.TrimSpace(valID) == "" {
		return nil, ErrConfigInvalid
	}

	query := url.Values{}
	query.Set("val_id", valID)
	query.Set("store_id", cfg.StoreID)
	query.Set("store_passwd", cfg.StorePassword)
	query.Set("format", "json")
	endpoint := cfg.baseURL() + validationPath + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, ErrRequestFailed
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrRequestFailed
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var raw map[string]interface{}
	_ = json.Unmarshal(body, &raw)
	var parsed struct {
		Status      string `json:"status"`
		TranID      string `json:"tran_id"`
		ValID       string `json:"val_id"`
		Amount      string `json:"amount"`
		Currency    string `json:"currency"`
		BankTranID  string `json:"bank_tran_id"`
		CardType    string `json:"card_type"`
		StoreAmount string `json:"store_amount"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, ErrResponseInvalid
	}
	return &ValidationResult{
		Status:      strings.TrimSpace(parsed.Status),
		TranID:      strings.TrimSpace(parsed.TranID),
		ValID:       strings.TrimSpace(parsed.ValID),
		Amount:      strings.TrimSpace(parsed.Amount),
		Currency:    strings.TrimSpace(parsed.Currency),
		BankTranID:  strings.TrimSpace(parsed.BankTranID),
		CardType:    strings.TrimSpace(parsed.CardType),
		StoreAmount: strings.TrimSpace(parsed.StoreAmount),
		Raw:         raw,
	}, nil
}

func postForm(ctx context.Context, endpoint string, params map[string]string) ([]byte, error) {
	values := url.Values{}
	for k, v := range params {
		if v == "" {
			continue
		}
		values.Set(k, v)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json, text/plain, */*")
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, ErrRequestFailed
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func signMD5(content string) string {
	sum := md5.Sum([]byte(content))
	return strings.ToLower(hex.EncodeToString(sum[:]))
}
