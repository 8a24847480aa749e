package server

import (
	"encoding/json"
	"net/http"

	"AuthQ/logger"
)

// Envelope 是所有端点统一的响应体。业务码与 HTTP 状态码相互独立。
type Envelope struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

const mismatchMessage = "Account and password do not match"

func writeEnvelope(w http.ResponseWriter, status, code int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(Envelope{Code: code, Message: message, Data: data}); err != nil {
		logger.Error("编码响应失败", logger.ErrorField(err))
	}
}

// respSuccess 业务码200 / HTTP 200
func respSuccess(w http.ResponseWriter, data interface{}) {
	writeEnvelope(w, http.StatusOK, 200, "Success", data)
}

// respBadRequest 业务码400 / HTTP 400
func respBadRequest(w http.ResponseWriter, message string, data interface{}) {
	if message == "" {
		message = "BAD REQUEST"
	}
	writeEnvelope(w, http.StatusBadRequest, 400, message, data)
}

// respUnprocessable 业务码422 / HTTP 422，message 携带校验明细
func respUnprocessable(w http.ResponseWriter, message string, data interface{}) {
	writeEnvelope(w, http.StatusUnprocessableEntity, 422, message, data)
}

// respMismatch 账号密码不匹配：业务码4000 / HTTP 400
func respMismatch(w http.ResponseWriter) {
	writeEnvelope(w, http.StatusBadRequest, 4000, mismatchMessage, mismatchMessage)
}

// respTokenError 凭证异常：业务码5000 / HTTP 500
func respTokenError(w http.ResponseWriter, message string) {
	writeEnvelope(w, http.StatusInternalServerError, 5000, message, nil)
}

// respUserNotFound token未知用户：业务码5001 / HTTP 500
func respUserNotFound(w http.ResponseWriter, message string) {
	writeEnvelope(w, http.StatusInternalServerError, 5001, message, nil)
}

// respServerError 业务码500 / HTTP 500
func respServerError(w http.ResponseWriter, message string) {
	if message == "" {
		message = "Server Error"
	}
	writeEnvelope(w, http.StatusInternalServerError, 500, message, nil)
}
