// Package schema defines the data structures shared by the MediaID service, its store and its SDK.
package schema

import "time"

// Record is one submitted medical/emergency profile.
// Text fields are nil when the submitter did not send them.
type Record struct {
	ID int64 `json:"-"`

	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Email     *string `json:"email"`
	Phone     *string `json:"phone"`
	DOB       *string `json:"dob"`
	Gender    *string `json:"gender"`

	Address *string `json:"address"`
	City    *string `json:"city"`
	State   *string `json:"state"`
	ZipCode *string `json:"zipCode"`

	EmergencyName     *string `json:"emergencyName"`
	EmergencyPhone    *string `json:"emergencyPhone"`
	EmergencyRelation *string `json:"emergencyRelation"`

	MedicalConditions *string `json:"medicalConditions"`
	MedicalHistory    *string `json:"medicalHistory"`
	BloodType         *string `json:"bloodType"`

	LocationServices bool `json:"locationServices"`
	Notifications    bool `json:"notifications"`

	Timestamp time.Time `json:"timestamp"`
}

// Text returns a pointer to s. It keeps record literals short.
func Text(s string) *string {
	return &s
}

// Value returns the dereferenced field or "" when it is absent.
func Value(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
