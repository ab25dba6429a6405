// Package supabase adapta Supabase Auth (GoTrue) al puerto auth.IdentityProvider.
package supabase

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/jhoicas/nordiqua-api/internal/application/auth"
	"github.com/jhoicas/nordiqua-api/internal/domain"
)

// Verificar en tiempo de compilación que GoTrueClient implementa IdentityProvider.
var _ auth.IdentityProvider = (*GoTrueClient)(nil)

const maxResponseBytes = 64 * 1024

// GoTrueClient cliente REST mínimo de la API de Supabase Auth.
// Usa net/http de la librería estándar; no requiere el SDK oficial.
type GoTrueClient struct {
	baseURL        string
	anonKey        string
	serviceRoleKey string
	httpClient     *http.Client
}

// NewGoTrueClient construye el adaptador. serviceRoleKey es opcional: sin ella DeleteIdentity falla.
func NewGoTrueClient(projectURL, anonKey, serviceRoleKey string) *GoTrueClient {
	return &GoTrueClient{
		baseURL:        strings.TrimRight(projectURL, "/") + "/auth/v1",
		anonKey:        anonKey,
		serviceRoleKey: serviceRoleKey,
		httpClient:     &http.Client{Timeout: 15 * time.Second},
	}
}

// ── Estructuras internas del protocolo GoTrue ─────────────────────────────────

type credentialsRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type gotrueUser struct {
	ID string `json:"id"`
}

// signUp devuelve la sesión (autoconfirm) o directamente el usuario (confirmación por email).
type authResponse struct {
	ID   string      `json:"id"`
	User *gotrueUser `json:"user"`
}

func (r authResponse) userID() string {
	if r.User != nil && r.User.ID != "" {
		return r.User.ID
	}
	return r.ID
}

type gotrueError struct {
	Code             any    `json:"code"`
	ErrorCode        string `json:"error_code"`
	Msg              string `json:"msg"`
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

func (e gotrueError) text() string {
	for _, s := range []string{e.Msg, e.Message, e.ErrorDescription, e.Error} {
		if s != "" {
			return s
		}
	}
	return ""
}

// ── Implementación del puerto ─────────────────────────────────────────────────

// SignUp crea el usuario en Supabase Auth y devuelve su ID.
func (c *GoTrueClient) SignUp(ctx context.Context, email, password string) (string, error) {
	var out authResponse
	status, apiErr, err := c.do(ctx, http.MethodPost, "/signup", c.anonKey, credentialsRequest{email, password}, &out)
	if err != nil {
		return "", err
	}
	if apiErr != nil {
		if isAlreadyRegistered(status, *apiErr) {
			return "", domain.ErrEmailAlreadyExists
		}
		return "", fmt.Errorf("supabase: signup HTTP %d: %s", status, apiErr.text())
	}
	id := out.userID()
	if id == "" {
		return "", fmt.Errorf("supabase: signup sin id de usuario")
	}
	return id, nil
}

// SignIn verifica credenciales con grant_type=password y devuelve el ID del usuario.
func (c *GoTrueClient) SignIn(ctx context.Context, email, password string) (string, error) {
	var out authResponse
	status, apiErr, err := c.do(ctx, http.MethodPost, "/token?grant_type=password", c.anonKey, credentialsRequest{email, password}, &out)
	if err != nil {
		return "", err
	}
	if apiErr != nil {
		if status == http.StatusBadRequest || status == http.StatusUnauthorized || status == http.StatusUnprocessableEntity {
			return "", domain.ErrInvalidCredentials
		}
		return "", fmt.Errorf("supabase: token HTTP %d: %s", status, apiErr.text())
	}
	id := out.userID()
	if id == "" {
		return "", fmt.Errorf("supabase: token sin usuario")
	}
	return id, nil
}

// DeleteIdentity elimina el usuario con la API de administración (requiere service role key).
// Un usuario inexistente no es error.
func (c *GoTrueClient) DeleteIdentity(ctx context.Context, id string) error {
	if c.serviceRoleKey == "" {
		return fmt.Errorf("supabase: SUPABASE_SERVICE_ROLE_KEY no configurado")
	}
	status, apiErr, err := c.do(ctx, http.MethodDelete, "/admin/users/"+url.PathEscape(id), c.serviceRoleKey, nil, nil)
	if err != nil {
		return err
	}
	if apiErr != nil && status != http.StatusNotFound {
		return fmt.Errorf("supabase: delete user HTTP %d: %s", status, apiErr.text())
	}
	return nil
}

// do ejecuta la petición. Devuelve apiErr (no nil) para respuestas no 2xx con el cuerpo decodificado.
func (c *GoTrueClient) do(ctx context.Context, method, path, key string, in, out any) (int, *gotrueError, error) {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("supabase: serializar request: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("supabase: crear HTTP request: %w", err)
	}
	req.Header.Set("apikey", key)
	req.Header.Set("Authorization", "Bearer "+key)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return 0, nil, fmt.Errorf("supabase: timeout o cancelación: %w", ctx.Err())
		}
		return 0, nil, fmt.Errorf("supabase: llamada HTTP fallida: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("supabase: leer respuesta: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var apiErr gotrueError
		if jsonErr := json.Unmarshal(raw, &apiErr); jsonErr != nil || apiErr.text() == "" {
			apiErr.Msg = strings.TrimSpace(string(raw))
		}
		return resp.StatusCode, &apiErr, nil
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, nil, fmt.Errorf("supabase: deserializar respuesta: %w", err)
		}
	}
	return resp.StatusCode, nil, nil
}

func isAlreadyRegistered(status int, e gotrueError) bool {
	switch e.ErrorCode {
	case "user_already_exists", "email_exists":
		return true
	}
	if status != http.StatusBadRequest && status != http.StatusUnprocessableEntity {
		return false
	}
	return strings.Contains(strings.ToLower(e.text()), "already registered")
}
