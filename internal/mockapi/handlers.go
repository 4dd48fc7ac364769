package mockapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/felixgeelhaar/rolegate/internal/domain"
	"github.com/felixgeelhaar/rolegate/internal/token"
)

type ctxKey struct{}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type registerRequest struct {
	Name      string      `json:"name"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Email     string      `json:"email"`
	Password  string      `json:"password"`
	Role      domain.Role `json:"role"`
}

type tokenResponse struct {
	Access string             `json:"access"`
	User   domain.UserProfile `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
		return
	}

	fields := FieldErrors{}
	if strings.TrimSpace(req.Email) == "" {
		fields.add("email", "This field is required.")
	}
	if req.Password == "" {
		fields.add("password", "This field is required.")
	}
	if len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}

	profile, ok := s.directory.Authenticate(req.Email, req.Password)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
		return
	}
	s.writeToken(w, http.StatusOK, profile)
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
		return
	}

	if req.FirstName == "" && req.LastName == "" {
		req.FirstName, req.LastName = domain.SplitName(req.Name)
	}
	in := domain.UserInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  req.Password,
		Role:      req.Role,
	}

	profile, err := s.directory.Create(in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeToken(w, http.StatusCreated, profile)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.logger.Debug("logout", "user_id", claimsFrom(r.Context()).Subject)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Successfully logged out"})
}

func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.directory.Get(domain.ID(claimsFrom(r.Context()).Subject))
	if !ok {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleRoleData(w http.ResponseWriter, r *http.Request) {
	role := domain.Role(chi.URLParam(r, "role"))
	if !role.IsValid() {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	claims := claimsFrom(r.Context())
	if domain.Role(claims.Role) != role {
		writeForbidden(w)
		return
	}

	profile, ok := s.directory.Get(domain.ID(claims.Subject))
	if !ok {
		writeDetail(w, http.StatusNotFound, "User not found")
		return
	}
	writeJSON(w, http.StatusOK, s.roleData(profile))
}

// roleData builds the dashboard payload for the profile's role
func (s *Server) roleData(p domain.UserProfile) map[string]any {
	data := map[string]any{
		"message": fmt.Sprintf("Welcome, %s", p.FullName()),
		"role":    p.Role,
		"email":   p.Email,
	}
	switch p.Role {
	case domain.RoleEmployee:
		if p.EmployeeProfile != nil {
			data["department"] = p.EmployeeProfile.Department
			data["position"] = p.EmployeeProfile.Position
			data["leave_balance"] = p.EmployeeProfile.LeaveBalance
		}
	case domain.RoleManager:
		dept := ""
		if p.ManagerProfile != nil {
			dept = p.ManagerProfile.ManagedDepartment
		}
		team := 0
		for _, u := range s.directory.List() {
			if u.EmployeeProfile != nil && dept != "" && u.EmployeeProfile.Department == dept {
				team++
			}
		}
		data["managed_department"] = dept
		data["team_size"] = team
	case domain.RoleAdmin:
		counts := map[string]int{}
		total := 0
		for role, n := range s.directory.CountByRole() {
			counts[string(role)] = n
			total += n
		}
		data["users_by_role"] = counts
		data["total_users"] = total
	}
	return data
}

func (s *Server) handleListUsers(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.directory.List())
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in domain.UserInput
	if err := decodeJSON(r, &in); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
		return
	}
	profile, err := s.directory.Create(in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, profile)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	profile, ok := s.directory.Get(domain.ID(chi.URLParam(r, "id")))
	if !ok {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var in domain.UserInput
	if err := decodeJSON(r, &in); err != nil {
		writeDetail(w, http.StatusBadRequest, "JSON parse error - "+err.Error())
		return
	}
	profile, found, err := s.directory.Update(domain.ID(chi.URLParam(r, "id")), in)
	if !found {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id := domain.ID(chi.URLParam(r, "id"))
	if id.String() == claimsFrom(r.Context()).Subject {
		writeDetail(w, http.StatusBadRequest, "You cannot delete your own account.")
		return
	}
	if !s.directory.Delete(id) {
		writeDetail(w, http.StatusNotFound, "Not found.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// authenticate requires a valid bearer token
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := extractBearerToken(r.Header.Get("Authorization"))
		if raw == "" {
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}
		claims, err := s.issuer.Verify(raw)
		if err != nil {
			s.logger.Debug("rejected token", "error", err.Error())
			writeDetail(w, http.StatusUnauthorized, "Given token not valid for any token type")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims)))
	})
}

func (s *Server) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if domain.Role(claimsFrom(r.Context()).Role) != domain.RoleAdmin {
			writeForbidden(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func claimsFrom(ctx context.Context) *token.Claims {
	claims, _ := ctx.Value(ctxKey{}).(*token.Claims)
	if claims == nil {
		return &token.Claims{}
	}
	return claims
}

func (s *Server) writeToken(w http.ResponseWriter, status int, profile domain.UserProfile) {
	access, err := s.issuer.Issue(profile)
	if err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, status, tokenResponse{Access: access, User: profile})
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var fields FieldErrors
	if errors.As(err, &fields) {
		writeJSON(w, http.StatusBadRequest, fields)
		return
	}
	s.logger.WithError(err).Error("request failed")
	writeDetail(w, http.StatusInternalServerError, "A server error occurred.")
}

func decodeJSON(r *http.Request, out any) error {
	if r.Body == nil {
		return fmt.Errorf("empty body")
	}
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(out)
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeDetail(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}

func writeForbidden(w http.ResponseWriter) {
	writeDetail(w, http.StatusForbidden, "You do not have permission to perform this action.")
}

func extractBearerToken(authHeader string) string {
	parts := strings.Fields(strings.TrimSpace(authHeader))
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}
