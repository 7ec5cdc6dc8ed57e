package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"mediagate/core/auth"
	"mediagate/logger"
)

// LoginRequest represents the admin login request body
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// accessCode accepts the code as a JSON string or a bare number.
type accessCode string

func (c *accessCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = accessCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*c = accessCode(n.String())
	return nil
}

// VerifyCodeRequest represents the access code request body
type VerifyCodeRequest struct {
	Code accessCode `json:"code"`
}

// LoginHandler handles admin login requests
func (h *APIHandler) LoginHandler(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("[Login] 解析请求体失败", logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	token, err := h.auth.LoginAdmin(r.Context(), req.Username, req.Password)
	if err != nil {
		fail(w, r, "[Login]", err, "Login failed")
		return
	}

	logger.Info("[Login] 登录成功", logger.String("username", req.Username))
	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// VerifyCodeHandler exchanges an access code for a session token
func (h *APIHandler) VerifyCodeHandler(w http.ResponseWriter, r *http.Request) {
	var req VerifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Error("[VerifyCode] 解析请求体失败", logger.ErrorField(err))
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	res, err := h.auth.VerifyCode(r.Context(), strings.TrimSpace(string(req.Code)))
	if err != nil {
		fail(w, r, "[VerifyCode]", err, "Login failed")
		return
	}

	logger.Info("[VerifyCode] 验证成功", logger.Bool("isAdmin", res.IsAdmin))
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"token":   res.Token,
		"isAdmin": res.IsAdmin,
	})
}

// AuthMiddleware rejects requests without a valid bearer token and stores the
// decoded claims in the request context.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.Debug("[Auth] missing authorization header", logger.String("path", r.URL.Path))
			writeError(w, http.StatusUnauthorized, "Authorization header is required")
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
			writeError(w, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := h.auth.Tokens().Parse(parts[1])
		if err != nil {
			logger.Debug("[Auth] token rejected", logger.ErrorField(err))
			writeError(w, http.StatusUnauthorized, "Invalid token")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.ContextWithClaims(r.Context(), claims)))
	}
}

// AdminMiddleware is AuthMiddleware plus the isAdmin claim.
func (h *APIHandler) AdminMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := auth.ClaimsFromContext(r.Context())
		if !ok || !claims.IsAdmin {
			logger.Warn("[Auth] admin route denied", logger.String("path", r.URL.Path))
			writeError(w, http.StatusUnauthorized, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}
