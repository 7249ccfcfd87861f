// Package httputil renders the uniform response envelope
// {code, message, data, timestamp} consumed by the mobile clients.
// The message is localized from the Accept-Language header.
package httputil

import (
	"encoding/json"
	"net/http"
	"time"

	"nomad-health-backend/internal/apperr"

	"github.com/sirupsen/logrus"
)

// Envelope is the uniform body of every API response.
type Envelope struct {
	Code      int         `json:"code"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data"`
	Timestamp int64       `json:"timestamp"`
}

// languageMessages maps message keys to client-facing text per language.
// zh-CN is the default; mn-MN covers the Mongolian-language clients.
var languageMessages = map[string]map[string]string{
	"zh-CN": {
		"success":               "操作成功",
		"param_error":           "参数错误",
		"auth_failed":           "认证失败",
		"server_error":          "服务器错误",
		"not_found":             "资源不存在",
		"user_not_found":        "用户不存在",
		"account_password_error": "账号或密码错误",
		"account_exists":        "该账号已被注册",
		"phone_exists":          "该手机号已被注册",
		"no_file_selected":      "未选择文件",
		"unsupported_file_type": "不支持的文件类型",
		"update_success":        "更新成功",
		"delete_success":        "删除成功",
		"login_success":         "登录成功",
		"register_success":      "注册成功",
		"ai_service_error":      "医疗咨询服务暂时不可用",
	},
	"mn-MN": {
		"success":               "Амжилттай",
		"param_error":           "Параметр алдаа",
		"auth_failed":           "Баталгаажуулалт амжилтгүй",
		"server_error":          "Серверийн алдаа",
		"not_found":             "Олдсонгүй",
		"user_not_found":        "Хэрэглэгч олдсонгүй",
		"account_password_error": "Бүртгэл эсвэл нууц үг буруу байна",
		"account_exists":        "Энэ бүртгэл бүртгэлтэй байна",
		"phone_exists":          "Энэ утасны дугаар бүртгэлтэй байна",
		"no_file_selected":      "Файл сонгоогүй байна",
		"unsupported_file_type": "Дэмжигддэггүй файлын төрөл",
		"update_success":        "Амжилттай шинэчлэгдсэн",
		"delete_success":        "Амжилттай устгагдсан",
		"login_success":         "Амжилттай нэвтэрсэн",
		"register_success":      "Амжилттай бүртгүүлсэн",
		"ai_service_error":      "Эмнэлгийн зөвлөгөөний үйлчилгээ түр боломжгүй",
	},
}

// Message resolves a message key for the request's Accept-Language.
// Unknown languages fall back to zh-CN; unknown keys pass through verbatim.
func Message(r *http.Request, key string) string {
	language := r.Header.Get("Accept-Language")
	table, ok := languageMessages[language]
	if !ok {
		table = languageMessages["zh-CN"]
	}
	if msg, ok := table[key]; ok {
		return msg
	}
	return key
}

// Respond writes the envelope with the given code, message key and payload.
// The envelope code doubles as the HTTP status code.
func Respond(w http.ResponseWriter, r *http.Request, code int, messageKey string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	env := Envelope{
		Code:      code,
		Message:   Message(r, messageKey),
		Data:      data,
		Timestamp: time.Now().UnixMilli(),
	}
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logrus.WithError(err).Error("failed to encode JSON response")
	}
}

// RespondAppError maps a tagged application error onto the envelope. The
// detail string, when present, replaces the payload so clients see the
// specific reason alongside the stable localized message.
func RespondAppError(w http.ResponseWriter, r *http.Request, err error) {
	code := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindInvalidState:
		code = http.StatusBadRequest
	case apperr.KindNotFound:
		code = http.StatusNotFound
	case apperr.KindUpstreamUnavailable, apperr.KindUpstreamFailure, apperr.KindPersistence:
		code = http.StatusInternalServerError
	}

	var data interface{}
	if detail := apperr.DetailOf(err); detail != "" {
		data = detail
	}
	Respond(w, r, code, apperr.MessageKeyOf(err), data)
}
