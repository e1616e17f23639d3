package api

import (
	"strings"

	"github.com/celerix-dev/mediaid/pkg/schema"
	"github.com/gin-gonic/gin"
)

// Form field names accepted by /submit.
const (
	fieldFirstName         = "firstName"
	fieldLastName          = "lastName"
	fieldEmail             = "email"
	fieldPhone             = "phone"
	fieldDOB               = "dob"
	fieldGender            = "gender"
	fieldAddress           = "address"
	fieldCity              = "city"
	fieldState             = "state"
	fieldZipCode           = "zipCode"
	fieldEmergencyName     = "emergencyName"
	fieldEmergencyPhone    = "emergencyPhone"
	fieldEmergencyRelation = "emergencyRelation"
	fieldMedicalConditions = "medicalConditions"
	fieldMedicalHistory    = "medicalHistory"
	fieldBloodType         = "bloodType"
	fieldLocationServices  = "locationServices"
	fieldNotifications     = "notifications"
)

// falsy lists the preference values read as false, compared lower-cased and trimmed.
var falsy = map[string]bool{
	"":      true,
	"0":     true,
	"false": true,
	"f":     true,
	"off":   true,
	"no":    true,
	"n":     true,
}

// ParseFlag reads a preference value. Absent and falsy values are false,
// anything else (including a checkbox's "on") is true.
func ParseFlag(raw string, present bool) bool {
	if !present {
		return false
	}
	return !falsy[strings.ToLower(strings.TrimSpace(raw))]
}

// recordFromForm maps the posted form onto a Record. Missing keys stay nil.
func recordFromForm(c *gin.Context) schema.Record {
	text := func(key string) *string {
		if v, ok := c.GetPostForm(key); ok {
			return &v
		}
		return nil
	}
	flag := func(key string) bool {
		v, ok := c.GetPostForm(key)
		return ParseFlag(v, ok)
	}

	return schema.Record{
		FirstName:         text(fieldFirstName),
		LastName:          text(fieldLastName),
		Email:             text(fieldEmail),
		Phone:             text(fieldPhone),
		DOB:               text(fieldDOB),
		Gender:            text(fieldGender),
		Address:           text(fieldAddress),
		City:              text(fieldCity),
		State:             text(fieldState),
		ZipCode:           text(fieldZipCode),
		EmergencyName:     text(fieldEmergencyName),
		EmergencyPhone:    text(fieldEmergencyPhone),
		EmergencyRelation: text(fieldEmergencyRelation),
		MedicalConditions: text(fieldMedicalConditions),
		MedicalHistory:    text(fieldMedicalHistory),
		BloodType:         text(fieldBloodType),
		LocationServices:  flag(fieldLocationServices),
		Notifications:     flag(fieldNotifications),
	}
}
