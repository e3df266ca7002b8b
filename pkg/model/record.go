// pkg/model/record.go
package model

import (
	"time"
)

// Raw column names as they appear in the NYC Open Data 311 extract.
// The ingestion collaborator supplies every row as a mapping from these
// names to string values; an empty string means null.
const (
	ColUniqueKey            = "Unique Key"
	ColCreatedDate          = "Created Date"
	ColClosedDate           = "Closed Date"
	ColAgency               = "Agency"
	ColAgencyName           = "Agency Name"
	ColComplaintType        = "Complaint Type"
	ColDescriptor           = "Descriptor"
	ColLocationType         = "Location Type"
	ColIncidentZip          = "Incident Zip"
	ColIncidentAddress      = "Incident Address"
	ColCity                 = "City"
	ColStatus               = "Status"
	ColResolutionDesc       = "Resolution Description"
	ColResolutionActionDate = "Resolution Action Updated Date"
	ColCommunityBoard       = "Community Board"
	ColBorough              = "Borough"
	ColLatitude             = "Latitude"
	ColLongitude            = "Longitude"
)

// RequiredColumns is the fixed column set the pipeline cannot run without.
// A column missing from the input mapping is a schema violation and aborts
// the whole batch.
var RequiredColumns = []string{
	ColUniqueKey,
	ColCreatedDate,
	ColClosedDate,
	ColAgency,
	ColAgencyName,
	ColComplaintType,
	ColDescriptor,
	ColLocationType,
	ColIncidentZip,
	ColIncidentAddress,
	ColCity,
	ColStatus,
	ColResolutionDesc,
	ColResolutionActionDate,
	ColCommunityBoard,
	ColBorough,
	ColLatitude,
	ColLongitude,
}

// RawRecord is one untransformed ingested row. All fields are strings,
// mirroring the heterogeneous source encoding. Owned by the ingestion
// collaborator; the pipeline only reads it.
type RawRecord map[string]string

// Value returns the raw string for a column. A missing key and an empty
// string are both treated as null by the normalizers.
func (r RawRecord) Value(column string) string {
	return r[column]
}

// Has reports whether the column key exists in the mapping at all,
// independent of whether its value is empty.
func (r RawRecord) Has(column string) bool {
	_, ok := r[column]
	return ok
}

// CleanedRecord is the canonical, validated row used for analysis.
// Pointer fields are nil when the source value was absent or failed
// normalization. The db tags match the cleaned table materialized by
// the storage collaborator.
type CleanedRecord struct {
	UniqueKey string `db:"unique_key"`

	CreatedAt *time.Time `db:"created_at"`
	ClosedAt  *time.Time `db:"closed_at"`

	Agency            string `db:"agency"`
	AgencyName        string `db:"agency_name"`
	ComplaintType     string `db:"complaint_type"`
	ComplaintCategory string `db:"complaint_category"`
	Descriptor        string `db:"descriptor"`
	LocationType      string `db:"location_type"`
	IncidentZip       string `db:"incident_zip"`
	IncidentAddress   string `db:"incident_address"`
	City              string `db:"city"`

	Borough Borough `db:"borough"`

	Latitude  *float64 `db:"latitude"`
	Longitude *float64 `db:"longitude"`

	Status                string `db:"status"`
	ResolutionDescription string `db:"resolution_description"`
	ResolutionActionDate  string `db:"resolution_action_date"`
	CommunityBoard        string `db:"community_board"`

	HasValidBorough     bool `db:"has_valid_borough"`
	HasValidCoordinates bool `db:"has_valid_coordinates"`
	HasValidCreatedDate bool `db:"has_valid_created_date"`
	HasClosedDate       bool `db:"has_closed_date"`
}

// ResponseTime returns the elapsed time between creation and closure.
// It is only defined when both timestamps parsed and closure did not
// precede creation.
func (c *CleanedRecord) ResponseTime() (time.Duration, bool) {
	if c.CreatedAt == nil || c.ClosedAt == nil {
		return 0, false
	}
	d := c.ClosedAt.Sub(*c.CreatedAt)
	if d < 0 {
		return 0, false
	}
	return d, true
}
