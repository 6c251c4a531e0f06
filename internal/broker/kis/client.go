package kis

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/assist-by/helios/internal/broker"
)

const (
	realBaseURL    = "https://openapi.koreainvestment.com:9443"
	virtualBaseURL = "https://openapivts.koreainvestment.com:29443"
)

// Credential은 한국투자증권 오픈 API 접속 정보를 담습니다.
// 계정 디렉토리의 auth.json에서 로드됩니다
type Credential struct {
	AppKey        string `json:"appkey"`
	AppSecret     string `json:"appsecret"`
	AccountNumber string `json:"account_number"` // 예: "12345678-01"
	Virtual       bool   `json:"virtual"`        // 모의투자 여부
}

// LoadCredential은 auth.json 파일에서 접속 정보를 읽습니다
func LoadCredential(path string) (Credential, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Credential{}, fmt.Errorf("인증 파일 읽기 실패: %w", err)
	}

	var cred Credential
	if err := json.Unmarshal(data, &cred); err != nil {
		return Credential{}, fmt.Errorf("인증 파일 파싱 실패: %w", err)
	}
	if cred.AppKey == "" || cred.AppSecret == "" || cred.AccountNumber == "" {
		return Credential{}, fmt.Errorf("인증 파일에 필수 항목이 없습니다: %s", path)
	}

	return cred, nil
}

// Client는 한국투자증권 오픈 API 클라이언트를 구현합니다
type Client struct {
	appKey      string
	appSecret   string
	cano        string // 종합계좌번호 (앞 8자리)
	productCode string // 계좌상품코드 (뒤 2자리)
	virtual     bool

	http *resty.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// 컴파일 타임 인터페이스 구현 확인
var _ broker.Client = (*Client)(nil)

// ClientOption은 클라이언트 생성 옵션을 정의합니다
type ClientOption func(*Client)

// WithTimeout은 HTTP 클라이언트의 타임아웃을 설정합니다
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.http.SetTimeout(timeout)
	}
}

// WithBaseURL은 기본 URL을 설정합니다 (테스트용)
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.http.SetBaseURL(baseURL)
	}
}

// NewClient는 새로운 한국투자증권 API 클라이언트를 생성합니다
func NewClient(cred Credential, opts ...ClientOption) (*Client, error) {
	cano, productCode, err := splitAccountNumber(cred.AccountNumber)
	if err != nil {
		return nil, err
	}

	baseURL := realBaseURL
	if cred.Virtual {
		baseURL = virtualBaseURL
	}

	c := &Client{
		appKey:      cred.AppKey,
		appSecret:   cred.AppSecret,
		cano:        cano,
		productCode: productCode,
		virtual:     cred.Virtual,
		http: resty.New().
			SetBaseURL(baseURL).
			SetTimeout(10 * time.Second).
			SetHeader("Content-Type", "application/json; charset=utf-8"),
	}

	// 옵션 적용
	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// AccountNumber는 계좌번호 전체("CANO-상품코드")를 반환합니다
func (c *Client) AccountNumber() string {
	return c.cano + "-" + c.productCode
}

// splitAccountNumber는 "12345678-01" 형식의 계좌번호를 분리합니다
func splitAccountNumber(number string) (cano, productCode string, err error) {
	parts := strings.SplitN(strings.TrimSpace(number), "-", 2)
	if len(parts) != 2 || len(parts[0]) != 8 || len(parts[1]) != 2 {
		return "", "", fmt.Errorf("잘못된 계좌번호 형식입니다: %q (예: 12345678-01)", number)
	}
	return parts[0], parts[1], nil
}

// ensureToken은 접근 토큰이 유효한지 확인하고 필요 시 재발급합니다
func (c *Client) ensureToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 만료 1분 전까지는 기존 토큰 재사용
	if c.token != "" && time.Until(c.tokenExpiry) > time.Minute {
		return c.token, nil
	}

	var result tokenResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"grant_type": "client_credentials",
			"appkey":     c.appKey,
			"appsecret":  c.appSecret,
		}).
		SetResult(&result).
		Post("/oauth2/tokenP")
	if err != nil {
		return "", broker.NewError("token", "", "", err)
	}
	if resp.IsError() || result.AccessToken == "" {
		return "", broker.NewError("token", resp.Status(), string(resp.Body()), nil)
	}

	c.token = result.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(result.ExpiresIn) * time.Second)

	return c.token, nil
}

// hashkey는 주문 본문의 위변조 방지 해시를 발급받습니다
func (c *Client) hashkey(ctx context.Context, body any) (string, error) {
	var result hashkeyResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("appkey", c.appKey).
		SetHeader("appsecret", c.appSecret).
		SetBody(body).
		SetResult(&result).
		Post("/uapi/hashkey")
	if err != nil {
		return "", broker.NewError("hashkey", "", "", err)
	}
	if resp.IsError() || result.Hash == "" {
		return "", broker.NewError("hashkey", resp.Status(), string(resp.Body()), nil)
	}
	return result.Hash, nil
}

// newRequest는 인증 헤더가 설정된 요청을 생성합니다
func (c *Client) newRequest(ctx context.Context, trID string) (*resty.Request, error) {
	token, err := c.ensureToken(ctx)
	if err != nil {
		return nil, err
	}

	// 모의투자는 실전 TR ID의 첫 글자를 V로 교체해 사용합니다
	if c.virtual && len(trID) > 0 && trID[0] == 'T' {
		trID = "V" + trID[1:]
	}

	return c.http.R().
		SetContext(ctx).
		SetHeader("authorization", "Bearer "+token).
		SetHeader("appkey", c.appKey).
		SetHeader("appsecret", c.appSecret).
		SetHeader("tr_id", trID), nil
}
