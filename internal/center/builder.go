package center

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"centerhub/internal/csvparse"
	"centerhub/internal/header"
)

const mapsDirectionsURL = "https://www.google.com/maps/dir/?api=1&destination=%s&travelmode=driving"

// Ingest runs the whole pipeline over raw CSV text: tokenize, resolve the
// header row, build one record per data row.
//
// Empty or header-only input yields an empty slice; it is not an error.
func Ingest(text string, rules []header.Rule, now time.Time) []Record {
	return Build(csvparse.Parse(text), rules, now)
}

// Build converts tokenized rows into records. rows[0] is the header.
//
// Rows with a blank center name are skipped: they are template rows that
// nobody has filled in yet. If no column resolves to the center name, no
// record is produced at all. Output order follows source row order.
func Build(rows [][]string, rules []header.Rule, now time.Time) []Record {
	if len(rows) < 2 {
		return []Record{}
	}
	cols := header.ResolveAll(rows[0], rules)
	if cols.Index(FieldCenterName) == header.NotFound {
		return []Record{}
	}

	stamp := now.UnixMilli()
	records := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if _, ok := cols.Cell(row, FieldCenterName); !ok {
			continue
		}
		records = append(records, buildRecord(row, cols, len(records), stamp))
	}
	return records
}

func buildRecord(row []string, cols header.ColumnMap, index int, stamp int64) Record {
	get := func(field, fallback string) string {
		if v, ok := cols.Cell(row, field); ok {
			return v
		}
		return fallback
	}

	name := get(FieldCenterName, UnnamedCenter)
	upazila := get(FieldUpazila, UnknownUpazila)
	lat := get(FieldLatitude, "")
	lng := get(FieldLongitude, "")
	mapsURL := DirectionsURL(name, upazila, lat, lng)

	return Record{
		ID:              fmt.Sprintf("center-%d-%d", index, stamp),
		SerialNo:        get(FieldSerialNo, strconv.Itoa(index+1)),
		CenterName:      name,
		Upazila:         upazila,
		Union:           get(FieldUnion, NoData),
		Type:            get(FieldType, NotAvailable),
		RiskStatus:      get(FieldRiskStatus, DefaultRisk),
		VoteCentreType:  get(FieldVoteCentreType, NoData),
		TotalVoters:     get(FieldTotalVoters, ZeroCount),
		MaleVoters:      get(FieldMaleVoters, ZeroCount),
		FemaleVoters:    get(FieldFemaleVoters, ZeroCount),
		HijraVoters:     get(FieldHijraVoters, ZeroCount),
		OfficerName:     get(FieldOfficerName, NoData),
		Rank:            get(FieldRank, NoData),
		Phone:           get(FieldPhone, NotAvailable),
		PoliceTeam:      get(FieldPoliceTeam, NoData),
		BGBTeam:         get(FieldBGBTeam, NoData),
		ArmyTeam:        get(FieldArmyTeam, NoData),
		RABTeam:         get(FieldRABTeam, NoData),
		MagistratePhone: get(FieldMagistratePhone, NotAvailable),
		Latitude:        lat,
		Longitude:       lng,
		MapsURL:         mapsURL,
		ViewURL:         mapsURL,
	}
}

// DirectionsURL builds a driving-directions link. Coordinates are used when
// both are present; otherwise the destination is "name, upazila".
func DirectionsURL(name, upazila, lat, lng string) string {
	if lat != "" && lng != "" {
		return fmt.Sprintf(mapsDirectionsURL, lat+","+lng)
	}
	return fmt.Sprintf(mapsDirectionsURL, encodeComponent(name+", "+upazila))
}

// componentUnescaper undoes the QueryEscape escapes that encodeURIComponent
// leaves as literal characters.
var componentUnescaper = strings.NewReplacer(
	"+", "%20",
	"%21", "!",
	"%27", "'",
	"%28", "(",
	"%29", ")",
	"%2A", "*",
)

// encodeComponent percent-encodes s the way a browser's encodeURIComponent
// does: spaces as %20, with !'()* kept literal.
func encodeComponent(s string) string {
	return componentUnescaper.Replace(url.QueryEscape(s))
}
