package ai

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// TranscriptionResult is the outcome of one speech-to-text exchange.
// Transcribe never returns a Go error; failures carry a descriptive Reason.
type TranscriptionResult struct {
	OK     bool
	Text   string
	Reason string
}

// Transcriber turns raw audio bytes into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, format string) TranscriptionResult
}

// Audio frame statuses on the Xunfei stream.
const (
	frameStatusFirst = 0
	frameStatusLast  = 2
)

// transcribeTimeout bounds the whole WebSocket exchange: a stalled remote
// socket must not hold the request worker.
const transcribeTimeout = 20 * time.Second

// XunfeiClient speaks the Xunfei IAT streaming recognition protocol. The
// whole utterance is uploaded as one frame followed by the terminal frame;
// the first final segment wins.
type XunfeiClient struct {
	apiKey    string
	apiSecret string
	host      string

	// Endpoint and Timeout are overridable, mainly for tests.
	Endpoint string
	Timeout  time.Duration

	dialer *websocket.Dialer
}

func NewXunfeiClient(apiKey, apiSecret, host string) *XunfeiClient {
	return &XunfeiClient{
		apiKey:    apiKey,
		apiSecret: apiSecret,
		host:      host,
		Endpoint:  fmt.Sprintf("wss://%s/v1", host),
		Timeout:   transcribeTimeout,
		dialer:    websocket.DefaultDialer,
	}
}

// authParams builds the signed handshake query parameters: an HMAC-SHA256
// signature over the canonical "host / date / request-line" string, wrapped
// in a base64-encoded authorization header.
func (c *XunfeiClient) authParams(date string) url.Values {
	signatureOrigin := fmt.Sprintf("host: %s\ndate: %s\nGET /v1 HTTP/1.1", c.host, date)

	mac := hmac.New(sha256.New, []byte(c.apiSecret))
	mac.Write([]byte(signatureOrigin))
	signature := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	authorizationOrigin := fmt.Sprintf(
		`api_key="%s", algorithm="hmac-sha256", headers="host date request-line", signature="%s"`,
		c.apiKey, signature)
	authorization := base64.StdEncoding.EncodeToString([]byte(authorizationOrigin))

	params := url.Values{}
	params.Set("authorization", authorization)
	params.Set("date", date)
	params.Set("host", c.host)
	return params
}

type xunfeiFrame struct {
	Common   xunfeiCommon   `json:"common"`
	Business xunfeiBusiness `json:"business"`
	Data     xunfeiData     `json:"data"`
}

type xunfeiCommon struct {
	AppID string `json:"app_id"`
}

type xunfeiBusiness struct {
	Language string `json:"language"`
	Domain   string `json:"domain"`
	Accent   string `json:"accent"`
	Format   string `json:"format"`
}

type xunfeiData struct {
	Status   int    `json:"status"`
	Format   string `json:"format"`
	Audio    string `json:"audio"`
	Encoding string `json:"encoding"`
}

type xunfeiResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    struct {
		Status int `json:"status"`
		Result struct {
			Text string `json:"text"`
		} `json:"result"`
	} `json:"data"`
}

// Transcribe uploads the audio and waits for the final transcript segment.
// Connection failure, a non-zero upstream code, expiry of the time bound or
// an empty transcript all fail with a reason.
func (c *XunfeiClient) Transcribe(ctx context.Context, audio []byte, format string) TranscriptionResult {
	if c.apiKey == "" || c.apiSecret == "" {
		return TranscriptionResult{Reason: "讯飞API配置错误"}
	}

	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	date := time.Now().UTC().Format("Mon, 02 Jan 2006 15:04:05") + " GMT"
	wsURL := c.Endpoint + "?" + c.authParams(date).Encode()

	conn, _, err := c.dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		logrus.WithError(err).Error("xunfei websocket dial failed")
		return TranscriptionResult{Reason: fmt.Sprintf("语音识别连接失败: %v", err)}
	}
	defer conn.Close()

	// The context deadline bounds every read and write on the socket.
	deadline, _ := ctx.Deadline()
	_ = conn.SetReadDeadline(deadline)
	_ = conn.SetWriteDeadline(deadline)

	frame := xunfeiFrame{
		Common: xunfeiCommon{AppID: c.apiKey},
		Business: xunfeiBusiness{
			Language: "zh_cn",
			Domain:   "iat",
			Accent:   "mandarin",
			Format:   format,
		},
		Data: xunfeiData{
			Status:   frameStatusFirst,
			Format:   format,
			Audio:    base64.StdEncoding.EncodeToString(audio),
			Encoding: "raw",
		},
	}
	if err := conn.WriteJSON(frame); err != nil {
		logrus.WithError(err).Error("xunfei audio frame write failed")
		return TranscriptionResult{Reason: fmt.Sprintf("语音识别发送失败: %v", err)}
	}

	frame.Data.Status = frameStatusLast
	frame.Data.Audio = ""
	if err := conn.WriteJSON(frame); err != nil {
		logrus.WithError(err).Error("xunfei terminal frame write failed")
		return TranscriptionResult{Reason: fmt.Sprintf("语音识别发送失败: %v", err)}
	}

	for {
		var resp xunfeiResponse
		if err := conn.ReadJSON(&resp); err != nil {
			logrus.WithError(err).Error("xunfei read failed")
			return TranscriptionResult{Reason: fmt.Sprintf("语音识别超时或中断: %v", err)}
		}
		if resp.Code != 0 {
			logrus.WithFields(logrus.Fields{"code": resp.Code, "message": resp.Message}).
				Warn("xunfei recognition rejected")
			return TranscriptionResult{Reason: fmt.Sprintf("语音识别失败: %s", resp.Message)}
		}
		if resp.Data.Status == frameStatusLast {
			if resp.Data.Result.Text == "" {
				return TranscriptionResult{Reason: "语音识别失败"}
			}
			return TranscriptionResult{OK: true, Text: resp.Data.Result.Text}
		}
	}
}
