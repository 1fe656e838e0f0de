package party

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMarketplaceParty(t *testing.T) {
	t.Run("with email", func(t *testing.T) {
		p, err := NewMarketplaceParty("ebay", "testuser_shalabhaggarwal", " Shalabh@Example.com ")
		require.NoError(t, err)
		assert.Equal(t, "testuser_shalabhaggarwal", p.Name)
		require.NotNil(t, p.Identity)
		assert.Equal(t, p.ID, p.Identity.PartyID)
		assert.Equal(t, "ebay", p.Identity.Source)
		require.Len(t, p.ContactMechanisms, 1)
		assert.Equal(t, "shalabh@example.com", p.Email())
	})

	t.Run("masked email is dropped", func(t *testing.T) {
		p, err := NewMarketplaceParty("ebay", "buyer", "Invalid Request")
		require.NoError(t, err)
		assert.Empty(t, p.ContactMechanisms)
	})

	t.Run("missing user id", func(t *testing.T) {
		_, err := NewMarketplaceParty("ebay", "  ", "a@b.com")
		assert.ErrorIs(t, err, ErrInvalidBuyer)
	})
}

func TestNewContactMechanism(t *testing.T) {
	partyID := uuid.New()

	cm, err := NewContactMechanism(partyID, ContactTypePhone, " +1 (555) 010-2000 ")
	require.NoError(t, err)
	assert.Equal(t, "+15550102000", cm.Value)

	_, err = NewContactMechanism(partyID, ContactTypePhone, "Invalid Request")
	assert.ErrorIs(t, err, ErrInvalidPhone)

	_, err = NewContactMechanism(partyID, ContactTypeEmail, "not-an-email")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = NewContactMechanism(partyID, ContactType("fax"), "123")
	assert.ErrorIs(t, err, ErrInvalidContactType)
}

func TestParty_FindContact(t *testing.T) {
	p, err := NewParty("buyer")
	require.NoError(t, err)
	cm, err := NewContactMechanism(p.ID, ContactTypePhone, "555-0100")
	require.NoError(t, err)
	p.ContactMechanisms = append(p.ContactMechanisms, *cm)

	assert.NotNil(t, p.FindContact(ContactTypePhone, "5550100"))
	assert.Nil(t, p.FindContact(ContactTypeMobile, "5550100"))
	assert.Equal(t, "5550100", p.Phone())
	assert.Empty(t, p.Email())
}

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"+91 98100 12345": "+919810012345",
		"(555) 010.2000":  "5550102000",
		"555+1":           "5551",
		"+":               "",
		"Invalid Request": "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePhone(in), in)
	}
}
