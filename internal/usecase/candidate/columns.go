package candidate

import (
	"fmt"
	"strconv"
	"time"

	"github.com/andreyxaxa/Candidate-Verifier/internal/entity"
)

// Import file headers. Matching is exact: case and surrounding spaces count.
const (
	ColClientName                 = "Client Name"
	ColSubClientName              = "Sub Client Name"
	ColCandidateName              = "Candidate Name"
	ColEmployeeID                 = "Employee Id"
	ColPhoneNumber                = "phone number"
	ColAlternatePhone             = "Alternate phone number"
	ColAddress                    = "address"
	ColPincode                    = "pincode"
	ColAreaName                   = "Area Name"
	ColCity                       = "City"
	ColState                      = "State"
	ColPOSStartDate               = "POS start date"
	ColPOSEndDate                 = "POS end Date"
	ColResidentType               = "Resident Type"
	ColRelationshipWithRespondent = "Relationship With Respondent"
	ColTypeOfID                   = "Type of ID"
)

var RequiredColumns = []string{
	ColClientName,
	ColSubClientName,
	ColCandidateName,
	ColEmployeeID,
	ColPhoneNumber,
	ColAlternatePhone,
	ColAddress,
	ColPincode,
	ColAreaName,
	ColCity,
	ColState,
	ColPOSStartDate,
	ColPOSEndDate,
	ColResidentType,
	ColRelationshipWithRespondent,
	ColTypeOfID,
}

// missingColumn returns the first required column absent from header, or "".
func missingColumn(header []string) string {
	present := make(map[string]struct{}, len(header))
	for _, h := range header {
		present[h] = struct{}{}
	}

	for _, col := range RequiredColumns {
		if _, ok := present[col]; !ok {
			return col
		}
	}

	return ""
}

func detailsFromRow(row map[string]any) entity.Details {
	return entity.Details{
		ClientName:                 toText(row[ColClientName]),
		SubClientName:              toText(row[ColSubClientName]),
		CandidateName:              toText(row[ColCandidateName]),
		EmployeeID:                 toText(row[ColEmployeeID]),
		PhoneNumber:                toText(row[ColPhoneNumber]),
		AlternatePhone:             toText(row[ColAlternatePhone]),
		Address:                    toText(row[ColAddress]),
		Pincode:                    toText(row[ColPincode]),
		AreaName:                   toText(row[ColAreaName]),
		City:                       toText(row[ColCity]),
		State:                      toText(row[ColState]),
		POSStartDate:               toText(row[ColPOSStartDate]),
		POSEndDate:                 toText(row[ColPOSEndDate]),
		ResidentType:               toText(row[ColResidentType]),
		RelationshipWithRespondent: toText(row[ColRelationshipWithRespondent]),
		TypeOfID:                   toText(row[ColTypeOfID]),
	}
}

// toText stringifies a parsed cell. Floats print without exponent or
// trailing zeros, so 9876543210 stays "9876543210".
func toText(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case time.Time:
		return v.Format(time.DateOnly)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
