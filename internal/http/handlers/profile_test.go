package handlers_test

import (
	"net/http"
	"testing"

	"github.com/geocoder89/familyauth/internal/domain/family"
	"github.com/geocoder89/familyauth/internal/domain/profile"
	"github.com/geocoder89/familyauth/internal/domain/user"
	"github.com/geocoder89/familyauth/internal/http/handlers"
	"github.com/gin-gonic/gin"
)

const profileBody = `{"first_name":"A","last_name":"B","birth_date":"2000-01-01","passport_series":"1234","passport_number":"567890","address":"addr","phone":"+1"}`

func profileRouter(profiles *fakeProfiles, members *fakeFamily, caller *user.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := handlers.NewProfileHandler(profiles, members)

	r := gin.New()
	r.Use(withIdentity(caller))
	r.GET("/profile", h.GetProfile)
	r.POST("/profile", h.UpsertProfile)
	r.PUT("/profile", h.UpsertProfile)
	r.GET("/profile/:userId", h.GetProfileForAdmin)

	return r
}

type profileResponse struct {
	Message       string           `json:"message"`
	Profile       profile.Profile  `json:"profile"`
	FamilyMembers []family.Member `json:"familyMembers"`
}

func TestUpsertProfile_CreateThenUpdate(t *testing.T) {
	caller := user.Identity{ID: 7, Email: "a@x.com", Role: user.RoleUser}
	profiles := newFakeProfiles()
	r := profileRouter(profiles, newFakeFamily(), &caller)

	w := doJSON(t, r, http.MethodPost, "/profile", profileBody)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var created profileResponse
	decode(t, w, &created)
	if created.Profile.UserID != 7 {
		t.Fatalf("profile must belong to caller, got user_id %d", created.Profile.UserID)
	}
	if created.Profile.HasMaternalCapital || created.Profile.MaternalCapitalAmount != 0 {
		t.Fatalf("unexpected maternal capital defaults: %+v", created.Profile)
	}
	if created.Profile.BirthDate.String() != "2000-01-01" {
		t.Fatalf("unexpected birth date %s", created.Profile.BirthDate)
	}

	w = doJSON(t, r, http.MethodPut, "/profile", profileBody)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on second upsert, got %d", w.Code)
	}
	if len(profiles.items) != 1 {
		t.Fatalf("expected exactly one profile, got %d", len(profiles.items))
	}
}

func TestUpsertProfile_KeepsExplicitMaternalCapital(t *testing.T) {
	caller := user.Identity{ID: 7, Role: user.RoleUser}
	r := profileRouter(newFakeProfiles(), newFakeFamily(), &caller)

	body := `{"first_name":"A","last_name":"B","birth_date":"2000-01-01","passport_series":"1234","passport_number":"567890","address":"addr","phone":"+1","has_maternal_capital":true,"maternal_capital_amount":586946.72,"housing_type":"rented","living_area":42.5,"ownership_status":"none"}`

	w := doJSON(t, r, http.MethodPost, "/profile", body)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	var resp profileResponse
	decode(t, w, &resp)
	if !resp.Profile.HasMaternalCapital || resp.Profile.MaternalCapitalAmount != 586946.72 {
		t.Fatalf("unexpected maternal capital %+v", resp.Profile)
	}
	if resp.Profile.HousingType == nil || *resp.Profile.HousingType != profile.HousingRented {
		t.Fatalf("housing type not kept: %+v", resp.Profile.HousingType)
	}
}

func TestUpsertProfile_ConcurrentCreateFallsBackToUpdate(t *testing.T) {
	caller := user.Identity{ID: 7, Role: user.RoleUser}
	profiles := newFakeProfiles()
	// GetByUserID says missing, Create then finds the row
	profiles.createErr = profile.ErrAlreadyExists
	profiles.items[7] = profile.Profile{UserID: 7}
	profiles.getErr = profile.ErrNotFound

	r := profileRouter(profiles, newFakeFamily(), &caller)

	if w := doJSON(t, r, http.MethodPost, "/profile", profileBody); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestUpsertProfile_ZeroRowsUpdated(t *testing.T) {
	caller := user.Identity{ID: 7, Role: user.RoleUser}
	profiles := newFakeProfiles()
	profiles.items[7] = profile.Profile{UserID: 7}
	profiles.updateErr = profile.ErrNotFound

	r := profileRouter(profiles, newFakeFamily(), &caller)

	if w := doJSON(t, r, http.MethodPost, "/profile", profileBody); w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
}

func TestUpsertProfile_Validation(t *testing.T) {
	caller := user.Identity{ID: 7, Role: user.RoleUser}
	r := profileRouter(newFakeProfiles(), newFakeFamily(), &caller)

	if w := doJSON(t, r, http.MethodPost, "/profile", `{"first_name":"A"}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}

	if w := doJSON(t, profileRouter(newFakeProfiles(), newFakeFamily(), nil), http.MethodPost, "/profile", profileBody); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without identity, got %d", w.Code)
	}
}

func TestGetProfile(t *testing.T) {
	caller := user.Identity{ID: 7, Role: user.RoleUser}
	profiles := newFakeProfiles()
	r := profileRouter(profiles, newFakeFamily(), &caller)

	w := doJSON(t, r, http.MethodGet, "/profile", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	errorMessage(t, w)

	profiles.items[7] = profile.Profile{UserID: 7, FirstName: "A"}

	w = doJSON(t, r, http.MethodGet, "/profile", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp profileResponse
	decode(t, w, &resp)
	if resp.FamilyMembers == nil {
		t.Fatalf("familyMembers must be an empty list, not null: %s", w.Body.String())
	}
}

func TestGetProfileForAdmin(t *testing.T) {
	admin := user.Identity{ID: 1, Role: user.RoleAdmin}
	profiles := newFakeProfiles()
	profiles.items[7] = profile.Profile{UserID: 7, FirstName: "A"}
	members := newFakeFamily(family.Member{ID: 3, UserID: 7, FirstName: "C"}, family.Member{ID: 4, UserID: 8})

	r := profileRouter(profiles, members, &admin)

	w := doJSON(t, r, http.MethodGet, "/profile/7", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var resp profileResponse
	decode(t, w, &resp)
	if resp.Profile.UserID != 7 || len(resp.FamilyMembers) != 1 || resp.FamilyMembers[0].ID != 3 {
		t.Fatalf("unexpected response %+v", resp)
	}

	if w := doJSON(t, r, http.MethodGet, "/profile/abc", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-numeric id, got %d", w.Code)
	}
	if w := doJSON(t, r, http.MethodGet, "/profile/99", ""); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}
