package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"creditlens/internal/xmltree"
)

// Report is the normalized form of one uploaded INProfileResponse document.
// It is written once and never updated.
type Report struct {
	ID                        uuid.UUID                 `json:"id"`
	UploadDate                time.Time                 `json:"upload_date"`
	ReportMetadata            ReportMetadata            `json:"report_metadata"`
	CurrentApplicationDetails CurrentApplicationDetails `json:"current_application_details"`
	BasicDetails              BasicDetails              `json:"basic_details"`
	ReportSummary             ReportSummary             `json:"report_summary"`
	TotalCapsSummary          *xmltree.Node             `json:"total_caps_summary"`
	CapsSummary               *xmltree.Node             `json:"caps_summary"`
	CreditAccounts            []CreditAccount           `json:"credit_accounts"`
	Source                    *ReportSource             `json:"source,omitempty"`
}

// ReportMetadata carries the bureau header blocks through verbatim.
type ReportMetadata struct {
	Header              *xmltree.Node `json:"header"`
	CreditProfileHeader *xmltree.Node `json:"credit_profile_header"`
	MatchResult         *xmltree.Node `json:"match_result"`
	ScoreDetails        *xmltree.Node `json:"score_details"`
}

// CurrentApplicationDetails carries the application blocks through verbatim.
type CurrentApplicationDetails struct {
	ApplicationInfo       *xmltree.Node `json:"application_info"`
	ApplicantDetails      *xmltree.Node `json:"applicant_details"`
	ApplicantOtherDetails *xmltree.Node `json:"applicant_other_details"`
	ApplicantAddress      *xmltree.Node `json:"applicant_address"`
}

// BasicDetails holds the flattened consumer fields shown at the top of the dashboard.
type BasicDetails struct {
	Name                 string  `json:"name"`
	MobilePhone          *string `json:"mobile_phone"`
	PAN                  *string `json:"pan"`
	CreditScore          Score   `json:"credit_score"`
	DateOfBirth          *string `json:"date_of_birth"`
	ReportDate           *string `json:"report_date"`
	ScoreConfidenceLevel *string `json:"score_confidence_level"`
}

// ReportSummary holds the account aggregates. When the source had no account
// container at all, Present is false and the summary encodes as {}.
type ReportSummary struct {
	Present                 bool          `json:"-"`
	CreditAccount           *xmltree.Node `json:"credit_account"`
	TotalOutstandingBalance *xmltree.Node `json:"total_outstanding_balance"`
}

type reportSummaryJSON struct {
	CreditAccount           *xmltree.Node `json:"credit_account"`
	TotalOutstandingBalance *xmltree.Node `json:"total_outstanding_balance"`
}

// MarshalJSON implements json.Marshaler.
func (s ReportSummary) MarshalJSON() ([]byte, error) {
	if !s.Present {
		return []byte("{}"), nil
	}
	return json.Marshal(reportSummaryJSON{
		CreditAccount:           s.CreditAccount,
		TotalOutstandingBalance: s.TotalOutstandingBalance,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Any key marks the summary present.
func (s *ReportSummary) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = ReportSummary{}
	if len(raw) == 0 {
		return nil
	}
	var v reportSummaryJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	s.Present = true
	s.CreditAccount = v.CreditAccount
	s.TotalOutstandingBalance = v.TotalOutstandingBalance
	return nil
}

// CreditAccount is one tradeline. Every scalar stays a string so codes with
// leading zeros or bureau sentinels survive untouched.
type CreditAccount struct {
	AccountNumber                     *string         `json:"account_number"`
	SubscriberName                    *string         `json:"subscriber_name"`
	PortfolioType                     *string         `json:"portfolio_type"`
	AccountType                       *string         `json:"account_type"`
	AccountStatus                     *string         `json:"account_status"`
	CurrentBalance                    *string         `json:"current_balance"`
	AmountOverdue                     *string         `json:"amount_overdue"`
	OpenDate                          *string         `json:"open_date"`
	CreditLimit                       *string         `json:"credit_limit"`
	HighestCreditOrOriginalLoanAmount *string         `json:"highest_credit_or_original_loan_amount"`
	PaymentRating                     *string         `json:"payment_rating"`
	DateReported                      *string         `json:"date_reported"`
	DateClosed                        *string         `json:"date_closed"`
	History                           []HistoryEntry  `json:"history"`
	HolderDetails                     *xmltree.Node   `json:"holder_details"`
	AddressDetails                    *xmltree.Node   `json:"address_details"`
	HolderIDDetails                   []*xmltree.Node `json:"holder_id_details"`
}

// HistoryEntry is one reported period of an account, in source order.
type HistoryEntry struct {
	Year                *string `json:"year"`
	Month               *string `json:"month"`
	DaysPastDue         *string `json:"days_past_due"`
	AssetClassification *string `json:"asset_classification"`
}

// ReportSource records where a stored report came from. It is kept beside the
// normalized document, not inside it.
type ReportSource struct {
	FileName   string `json:"file_name"`
	FileSize   int64  `json:"file_size"`
	Digest     string `json:"digest"`
	StorageKey string `json:"-"`
}

// ReportListItem is the summary row returned when listing uploads.
type ReportListItem struct {
	ID           uuid.UUID `db:"id" json:"id"`
	UploadDate   time.Time `db:"upload_date" json:"upload_date"`
	FileName     string    `db:"file_name" json:"file_name"`
	FullName     string    `db:"full_name" json:"name"`
	PAN          *string   `db:"pan" json:"pan"`
	CreditScore  Score     `db:"credit_score" json:"credit_score"`
	ReportDate   *string   `db:"report_date" json:"report_date"`
	AccountCount int       `db:"account_count" json:"account_count"`
}
