package repo

import "testing"

func TestUpdatableField(t *testing.T) {
	allowed := []string{
		"username", "first_name", "last_name", "city", "address1", "address2",
		"state", "postal_code", "country", "is_active",
		"marqeta_card_token", "marqeta_user_token", "marqeta_cardproduct_token",
	}
	for _, name := range allowed {
		col, ok := UpdatableField(name)
		if !ok {
			t.Errorf("%s should be updatable", name)
		}
		if col == "" {
			t.Errorf("%s has no column", name)
		}
	}

	// Identity and credentials are never updatable through this path.
	for _, name := range []string{"id", "email", "hashed_password", "created_at", "updated_at", "nonsense"} {
		if _, ok := UpdatableField(name); ok {
			t.Errorf("%s must not be updatable", name)
		}
	}
}
