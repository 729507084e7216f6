package handlers_test

import (
	"fmt"
	"net/http"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/mrvvsreddy/school-p1/internal/models"
)

func validApplication() map[string]any {
	return map[string]any{
		"student_name":   "R Kumar",
		"parent_name":    "S Kumar",
		"email":          "skumar@example.com",
		"phone":          "9000000002",
		"grade_applying": "6",
	}
}

func TestAdmissionApply(t *testing.T) {
	env := newTestEnv(t)

	rec := env.doJSON(http.MethodPost, "/api/admissions/apply", validApplication())
	require.Equal(t, http.StatusCreated, rec.Code)

	body := decodeBody(t, rec)
	appID, _ := body["application_id"].(string)
	pattern := fmt.Sprintf(`^APP-%d-\d{4}$`, time.Now().UTC().Year())
	require.Regexp(t, regexp.MustCompile(pattern), appID)

	var stored models.Admission
	require.NoError(t, env.DB.Where("application_id = ?", appID).First(&stored).Error)
	require.Equal(t, "pending", stored.Status)
	require.Equal(t, "+91", stored.DialCode)
}

func TestAdmissionApplyValidation(t *testing.T) {
	env := newTestEnv(t)

	payload := validApplication()
	delete(payload, "phone")
	rec := env.doJSON(http.MethodPost, "/api/admissions/apply", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	payload = validApplication()
	payload["email"] = "not-an-email"
	rec = env.doJSON(http.MethodPost, "/api/admissions/apply", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdmissionApplyFormRateLimit(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 10; i++ {
		rec := env.doJSON(http.MethodPost, "/api/admissions/apply", validApplication(), withIP("10.4.0.1"))
		require.Equal(t, http.StatusCreated, rec.Code, "submission %d", i+1)
	}

	rec := env.doJSON(http.MethodPost, "/api/admissions/apply", validApplication(), withIP("10.4.0.1"))
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))
}

func TestAdmissionAdminFlow(t *testing.T) {
	env := newTestEnv(t)
	tok := loginAs(t, env, "admin", "admin")

	rec := env.doJSON(http.MethodPost, "/api/admissions/apply", validApplication())
	require.Equal(t, http.StatusCreated, rec.Code)

	// the public form cannot read applications back
	rec = env.doJSON(http.MethodGet, "/api/admissions/applications", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.doJSON(http.MethodGet, "/api/admissions/applications?status=pending", nil, withToken(tok))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.EqualValues(t, 1, body["total"])
	apps := body["applications"].([]any)
	id := apps[0].(map[string]any)["id"].(string)

	rec = env.doJSON(http.MethodPut, "/api/admissions/applications/"+id,
		map[string]any{"status": "approved", "notes": "seat confirmed"}, withToken(tok))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(http.MethodPut, "/api/admissions/applications/"+id,
		map[string]any{"status": "lost"}, withToken(tok))
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSON(http.MethodGet, "/api/admissions/applications/"+id, nil, withToken(tok))
	got := decodeBody(t, rec)
	require.Equal(t, "approved", got["status"])
	require.Equal(t, "seat confirmed", got["notes"])

	rec = env.doJSON(http.MethodDelete, "/api/admissions/applications/"+id, nil, withToken(tok))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.doJSON(http.MethodGet, "/api/admissions/applications/"+id, nil, withToken(tok))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestContactSubmitAndAdminFlow(t *testing.T) {
	env := newTestEnv(t)
	tok := loginAs(t, env, "admin", "admin")

	rec := env.doJSON(http.MethodPost, "/api/contacts", map[string]any{
		"name":    "Visitor",
		"email":   "visitor@example.com",
		"phone":   "9000000003",
		"subject": "Fees",
		"message": "What are the fees for grade 6?",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = env.doJSON(http.MethodPost, "/api/contacts", map[string]any{
		"name": "No Message", "email": "x@example.com", "phone": "9000000004",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = env.doJSON(http.MethodGet, "/api/contacts?status=new", nil, withToken(tok))
	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	require.EqualValues(t, 1, body["total"])
	id := body["contacts"].([]any)[0].(map[string]any)["id"].(string)

	rec = env.doJSON(http.MethodGet, "/api/contacts/stats", nil, withToken(tok))
	require.Equal(t, http.StatusOK, rec.Code)
	stats := decodeBody(t, rec)
	require.EqualValues(t, 1, stats["new"])
	require.EqualValues(t, 1, stats["total"])

	rec = env.doJSON(http.MethodPut, "/api/contacts/"+id,
		map[string]any{"status": "resolved", "notes": "replied by mail"}, withToken(tok))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = env.doJSON(http.MethodGet, "/api/contacts/stats", nil, withToken(tok))
	stats = decodeBody(t, rec)
	require.EqualValues(t, 0, stats["new"])

	rec = env.doJSON(http.MethodGet, "/api/contacts?search=visitor", nil, withToken(tok))
	body = decodeBody(t, rec)
	require.EqualValues(t, 1, body["total"])

	rec = env.doJSON(http.MethodDelete, "/api/contacts/"+id, nil, withToken(tok))
	require.Equal(t, http.StatusOK, rec.Code)
	rec = env.doJSON(http.MethodDelete, "/api/contacts/"+id, nil, withToken(tok))
	require.Equal(t, http.StatusNotFound, rec.Code)
}
