// Package center builds election center records from tokenized spreadsheet rows.
package center

import (
	"strings"
)

// Placeholder values substituted for missing cells.
const (
	NoData         = "তথ্য নেই"
	NotAvailable   = "N/A"
	ZeroCount      = "0"
	Dash           = "-"
	UnnamedCenter  = "নামহীন কেন্দ্র"
	UnknownUpazila = "অজানা"
	DefaultRisk    = "সাধারণ"
)

// Logical field names, matching the header rule table.
const (
	FieldSerialNo        = "serialNo"
	FieldCenterName      = "centerName"
	FieldUpazila         = "upazila"
	FieldUnion           = "union"
	FieldType            = "type"
	FieldRiskStatus      = "riskStatus"
	FieldVoteCentreType  = "voteCentreType"
	FieldTotalVoters     = "totalVoters"
	FieldMaleVoters      = "maleVoters"
	FieldFemaleVoters    = "femaleVoters"
	FieldHijraVoters     = "hijraVoters"
	FieldOfficerName     = "officerName"
	FieldRank            = "rank"
	FieldPhone           = "phone"
	FieldPoliceTeam      = "policeTeam"
	FieldBGBTeam         = "bgbTeam"
	FieldArmyTeam        = "armyTeam"
	FieldRABTeam         = "rabTeam"
	FieldMagistratePhone = "magistratePhone"
	FieldLatitude        = "latitude"
	FieldLongitude       = "longitude"
)

// Record is one election center. Every field is a display string, including
// the numeric-looking ones; missing cells hold the field's placeholder.
//
// Records are values. Nothing in this module mutates a record once Build has
// returned it; a refresh replaces the whole slice.
type Record struct {
	ID              string `json:"id"`
	SerialNo        string `json:"serialNo"`
	CenterName      string `json:"centerName"`
	Upazila         string `json:"upazila"`
	Union           string `json:"union"`
	Type            string `json:"type"`
	RiskStatus      string `json:"riskStatus"`
	VoteCentreType  string `json:"voteCentreType"`
	TotalVoters     string `json:"totalVoters"`
	MaleVoters      string `json:"maleVoters"`
	FemaleVoters    string `json:"femaleVoters"`
	HijraVoters     string `json:"hijraVoters"`
	OfficerName     string `json:"officerName"`
	Rank            string `json:"rank"`
	Phone           string `json:"phone"`
	PoliceTeam      string `json:"policeTeam"`
	BGBTeam         string `json:"bgbTeam"`
	ArmyTeam        string `json:"armyTeam"`
	RABTeam         string `json:"rabTeam"`
	MagistratePhone string `json:"magistratePhone"`
	Latitude        string `json:"latitude"`
	Longitude       string `json:"longitude"`
	MapsURL         string `json:"mapsUrl"`
	ViewURL         string `json:"viewUrl"`
}

// Field returns the value of a logical field, or "" for unknown names.
func (r Record) Field(name string) string {
	switch name {
	case FieldSerialNo:
		return r.SerialNo
	case FieldCenterName:
		return r.CenterName
	case FieldUpazila:
		return r.Upazila
	case FieldUnion:
		return r.Union
	case FieldType:
		return r.Type
	case FieldRiskStatus:
		return r.RiskStatus
	case FieldVoteCentreType:
		return r.VoteCentreType
	case FieldTotalVoters:
		return r.TotalVoters
	case FieldMaleVoters:
		return r.MaleVoters
	case FieldFemaleVoters:
		return r.FemaleVoters
	case FieldHijraVoters:
		return r.HijraVoters
	case FieldOfficerName:
		return r.OfficerName
	case FieldRank:
		return r.Rank
	case FieldPhone:
		return r.Phone
	case FieldPoliceTeam:
		return r.PoliceTeam
	case FieldBGBTeam:
		return r.BGBTeam
	case FieldArmyTeam:
		return r.ArmyTeam
	case FieldRABTeam:
		return r.RABTeam
	case FieldMagistratePhone:
		return r.MagistratePhone
	case FieldLatitude:
		return r.Latitude
	case FieldLongitude:
		return r.Longitude
	}
	return ""
}

// CallURL returns the tel: link for phone. The call action is a no-op for
// placeholders, so ok is false when phone holds no real number.
func CallURL(phone string) (link string, ok bool) {
	phone = strings.TrimSpace(phone)
	if phone == "" || phone == NotAvailable || phone == NoData || phone == Dash {
		return "", false
	}
	return "tel:" + phone, true
}

// MapURL returns the navigation link of the center.
func (r Record) MapURL() (string, bool) {
	return r.MapsURL, r.MapsURL != ""
}
