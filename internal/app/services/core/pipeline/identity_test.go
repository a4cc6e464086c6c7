package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNamesEquivalent(t *testing.T) {
	t.Run("tolerates titles, initials, and reversed order", func(t *testing.T) {
		assert.True(t, NamesEquivalent("Dr. John M. Smith", "Smith, John"))
		assert.True(t, NamesEquivalent("Mr. Ramesh Kumar", "KUMAR RAMESH"))
		assert.True(t, NamesEquivalent("J. Smith", "John Smith"))
		assert.True(t, NamesEquivalent("Anita Desai", "Mrs. Anita Desai"))
	})

	t.Run("different people raise a mismatch", func(t *testing.T) {
		assert.False(t, NamesEquivalent("John Smith", "Jane Smith"))
		assert.False(t, NamesEquivalent("Ramesh Kumar", "Ramesh Sharma"))
	})

	t.Run("empty side never raises", func(t *testing.T) {
		assert.True(t, NamesEquivalent("", "John Smith"))
		assert.True(t, NamesEquivalent("John Smith", ""))
	})
}

func TestIsImplantItem(t *testing.T) {
	assert.True(t, IsImplantItem("Coronary Stent DES", ""))
	assert.True(t, IsImplantItem("Titanium Locking Plate", "consumables"))
	assert.True(t, IsImplantItem("Total Knee Joint Replacement Kit", ""))
	assert.True(t, IsImplantItem("Dual Chamber Pacemaker", "cardiac"))

	assert.False(t, IsImplantItem("Physiotherapy Session", "implant-adjacent-care"))
	assert.False(t, IsImplantItem("Room Rent", "room_charges"))
	assert.False(t, IsImplantItem("CBC Blood Test", "investigations"))
}

func TestIsSurgeryCase(t *testing.T) {
	assert.True(t, IsSurgeryCase([]string{"Laparoscopic Appendectomy"}, nil, nil))
	assert.True(t, IsSurgeryCase(nil, []string{"OT notes present"}, nil))
	assert.True(t, IsSurgeryCase(nil, nil, []string{"Fracture femur, fixation advised"}))
	assert.False(t, IsSurgeryCase([]string{"IV Antibiotics"}, nil, []string{"Acute gastroenteritis"}))
}
