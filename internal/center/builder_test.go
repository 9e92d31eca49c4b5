package center

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"centerhub/internal/header"
)

var buildTime = time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

func TestIngestMinimalSheet(t *testing.T) {
	csv := "Center Name,Upazila,Risk Status\nTest Center,Zone A,High\n"

	records := Ingest(csv, header.DefaultRules(), buildTime)
	require.Len(t, records, 1)

	maps := "https://www.google.com/maps/dir/?api=1&destination=Test%20Center%2C%20Zone%20A&travelmode=driving"
	want := Record{
		ID:              "center-0-1768473000000",
		SerialNo:        "1",
		CenterName:      "Test Center",
		Upazila:         "Zone A",
		Union:           NoData,
		Type:            NotAvailable,
		RiskStatus:      "High",
		VoteCentreType:  NoData,
		TotalVoters:     ZeroCount,
		MaleVoters:      ZeroCount,
		FemaleVoters:    ZeroCount,
		HijraVoters:     ZeroCount,
		OfficerName:     NoData,
		Rank:            NoData,
		Phone:           NotAvailable,
		PoliceTeam:      NoData,
		BGBTeam:         NoData,
		ArmyTeam:        NoData,
		RABTeam:         NoData,
		MagistratePhone: NotAvailable,
		MapsURL:         maps,
		ViewURL:         maps,
	}
	if diff := cmp.Diff(want, records[0]); diff != "" {
		t.Errorf("record mismatch (-want +got):\n%s", diff)
	}
}

func TestIngestSkipsBlankNames(t *testing.T) {
	csv := "SL,Center Name,Upazila,Phone\n" +
		"1,Alpha School,Kasba,01711\n" +
		"2,,Kasba,01822\n" +
		"3,  ,Akhaura,01933\n" +
		"4,Beta College,Akhaura,\n"

	records := Ingest(csv, header.DefaultRules(), buildTime)
	require.Len(t, records, 2)

	assert.Equal(t, "Alpha School", records[0].CenterName)
	assert.Equal(t, "01711", records[0].Phone)
	assert.Equal(t, "Beta College", records[1].CenterName)
	assert.Equal(t, "4", records[1].SerialNo, "serial read from sheet")
	assert.Equal(t, NotAvailable, records[1].Phone)
}

func TestIngestSerialFallbackIsOutputPosition(t *testing.T) {
	csv := "Center Name\nA\n\n,\nB\nC\n"

	records := Ingest(csv, header.DefaultRules(), buildTime)
	require.Len(t, records, 3)
	for i, want := range []string{"1", "2", "3"} {
		assert.Equal(t, want, records[i].SerialNo)
	}
}

func TestIngestShortRows(t *testing.T) {
	csv := "Center Name,Upazila,Union,Total Voter\nOnly Name\n"

	records := Ingest(csv, header.DefaultRules(), buildTime)
	require.Len(t, records, 1)
	assert.Equal(t, UnknownUpazila, records[0].Upazila)
	assert.Equal(t, NoData, records[0].Union)
	assert.Equal(t, ZeroCount, records[0].TotalVoters)
}

func TestIngestWithoutNameColumn(t *testing.T) {
	records := Ingest("Upazila,Union\nKasba,Mehari\n", header.DefaultRules(), buildTime)
	assert.Empty(t, records)
}

func TestIngestEmptyInput(t *testing.T) {
	assert.Empty(t, Ingest("", header.DefaultRules(), buildTime))
	assert.Empty(t, Ingest("Center Name,Upazila\n", header.DefaultRules(), buildTime))
}

func TestIngestCoordinates(t *testing.T) {
	csv := "Center Name,Upazila,Latitude,Longitude\n" +
		"Alpha,Kasba,23.78,91.10\n" +
		"Beta,Kasba,23.70,\n"

	records := Ingest(csv, header.DefaultRules(), buildTime)
	require.Len(t, records, 2)

	assert.Equal(t, "https://www.google.com/maps/dir/?api=1&destination=23.78,91.10&travelmode=driving", records[0].MapsURL)
	assert.Equal(t, "23.70", records[1].Latitude)
	assert.Equal(t, "", records[1].Longitude)
	assert.Contains(t, records[1].MapsURL, "destination=Beta%2C%20Kasba")
}

func TestIngestBanglaSheet(t *testing.T) {
	csv := "ক্রমিক,কেন্দ্রের নাম,উপজেলা,Union,ঝুঁকিপূর্ণ,মোট ভোটার,প্রিসাইডিং অফিসার,মোবাইল,ম্যাজিস্ট্রেট মোবাইল,পুলিশ ফোর্স\n" +
		"১,কসবা সরকারি উচ্চ বিদ্যালয়,কসবা,মেহারী,অধিক ঝুঁকিপূর্ণ,\"2,345\",জনাব করিম,01711000000,01811000000,টিম-১\n"

	records := Ingest(csv, header.DefaultRules(), buildTime)
	require.Len(t, records, 1)
	r := records[0]

	assert.Equal(t, "১", r.SerialNo)
	assert.Equal(t, "কসবা সরকারি উচ্চ বিদ্যালয়", r.CenterName)
	assert.Equal(t, "কসবা", r.Upazila)
	assert.Equal(t, "মেহারী", r.Union)
	assert.Equal(t, "অধিক ঝুঁকিপূর্ণ", r.RiskStatus)
	assert.Equal(t, "2,345", r.TotalVoters)
	assert.Equal(t, "জনাব করিম", r.OfficerName)
	assert.Equal(t, "01711000000", r.Phone)
	assert.Equal(t, "01811000000", r.MagistratePhone)
	assert.Equal(t, "টিম-১", r.PoliceTeam)
}

func TestRecordField(t *testing.T) {
	r := Record{Upazila: "Kasba", RABTeam: "R1", TotalVoters: "10"}

	assert.Equal(t, "Kasba", r.Field(FieldUpazila))
	assert.Equal(t, "R1", r.Field(FieldRABTeam))
	assert.Equal(t, "10", r.Field(FieldTotalVoters))
	assert.Equal(t, "", r.Field("unknown"))
}

func TestCallURL(t *testing.T) {
	link, ok := CallURL("01711000000")
	assert.True(t, ok)
	assert.Equal(t, "tel:01711000000", link)

	for _, phone := range []string{"", " ", NotAvailable, NoData, Dash} {
		_, ok := CallURL(phone)
		assert.False(t, ok, "phone %q", phone)
	}
}

func TestMapURL(t *testing.T) {
	link, ok := Record{MapsURL: "https://example.com"}.MapURL()
	assert.True(t, ok)
	assert.Equal(t, "https://example.com", link)

	_, ok = Record{}.MapURL()
	assert.False(t, ok)
}

func TestDirectionsURLEncoding(t *testing.T) {
	tests := []struct {
		name, center, upazila, want string
	}{
		{name: "spaces and comma", center: "Test Center", upazila: "Zone A", want: "Test%20Center%2C%20Zone%20A"},
		{name: "marks kept literal", center: "Center (A)!", upazila: "Kasba*'", want: "Center%20(A)!%2C%20Kasba*'"},
		{name: "reserved escaped", center: "A&B/C?", upazila: "50% +1", want: "A%26B%2FC%3F%2C%2050%25%20%2B1"},
		{name: "unicode", center: "কসবা", upazila: "", want: "%E0%A6%95%E0%A6%B8%E0%A6%AC%E0%A6%BE%2C%20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DirectionsURL(tt.center, tt.upazila, "", "")
			assert.Equal(t, "https://www.google.com/maps/dir/?api=1&destination="+tt.want+"&travelmode=driving", got)
		})
	}
}
