// Package extract turns a parsed Experian INProfileResponse tree into the
// normalized report document.
//
// Only a missing root element is an error. Every other absent field, block or
// account is represented as null or an empty list so that one report variant
// with an unexpected shape never blocks the rest of the document.
package extract

import (
	"strings"

	"creditlens/internal/domain"
	"creditlens/internal/xmltree"
)

// RootElement is the top-level tag of a bureau report.
const RootElement = "INProfileResponse"

// Paths resolved with the sequence-collapsing accessor.
var (
	pathFirstName       = xmltree.ParsePath("First_Name")
	pathLastName        = xmltree.ParsePath("Last_Name")
	pathMobilePhone     = xmltree.ParsePath("MobilePhoneNumber")
	pathPAN             = xmltree.ParsePath("CAIS_Account_DETAILS.CAIS_Holder_Details.Income_TAX_PAN")
	pathDateOfBirth     = xmltree.ParsePath("CAIS_Account_DETAILS.CAIS_Holder_Details.Date_of_birth")
	pathBureauScore     = xmltree.ParsePath("SCORE.BureauScore")
	pathReportDate      = xmltree.ParsePath("CreditProfileHeader.ReportDate")
	pathScoreConfidence = xmltree.ParsePath("SCORE.BureauScoreConfidLevel")
	pathAccountDetails  = xmltree.ParsePath("CAIS_Account_DETAILS")
)

// Extract builds the normalized report from doc, the output of xmltree.Parse.
// It returns domain.ErrSchema when the INProfileResponse root is absent. The
// returned report has no ID or upload date yet; the store assigns both.
func Extract(doc *xmltree.Node) (*domain.Report, error) {
	data := doc.Child(RootElement)
	if data.IsEmpty() {
		return nil, domain.ErrSchema
	}

	appDetails := data.Child("Current_Application").Child("Current_Application_Details")
	applicant := appDetails.Child("Current_Applicant_Details")
	caisAccount := data.Child("CAIS_Account")
	caisSummary := caisAccount.Child("CAIS_Summary")

	report := &domain.Report{
		ReportMetadata: domain.ReportMetadata{
			Header:              opaque(data.Child("Header")),
			CreditProfileHeader: opaque(data.Child("CreditProfileHeader")),
			MatchResult:         opaque(data.Child("Match_result")),
			ScoreDetails:        opaque(data.Child("SCORE")),
		},
		CurrentApplicationDetails: domain.CurrentApplicationDetails{
			ApplicationInfo:       opaque(appDetails),
			ApplicantDetails:      opaque(applicant),
			ApplicantOtherDetails: opaque(appDetails.Child("Current_Other_Details")),
			ApplicantAddress:      opaque(appDetails.Child("Current_Applicant_Address_Details")),
		},
		BasicDetails: domain.BasicDetails{
			Name:                 fullName(applicant),
			MobilePhone:          pathMobilePhone.Scalar(applicant),
			PAN:                  pathPAN.Scalar(caisAccount),
			CreditScore:          domain.ParseScore(pathBureauScore.Scalar(data)),
			DateOfBirth:          pathDateOfBirth.Scalar(caisAccount),
			ReportDate:           pathReportDate.Scalar(data),
			ScoreConfidenceLevel: pathScoreConfidence.Scalar(data),
		},
		TotalCapsSummary: opaque(data.Child("TotalCAPS_Summary")),
		CapsSummary:      opaque(data.Child("CAPS").Child("CAPS_Summary")),
		CreditAccounts:   []domain.CreditAccount{},
	}

	if caisAccount != nil && caisAccount.Kind() != xmltree.KindAmbiguous {
		report.ReportSummary = domain.ReportSummary{
			Present:                 true,
			CreditAccount:           opaque(caisSummary.Child("Credit_Account")),
			TotalOutstandingBalance: opaque(caisSummary.Child("Total_Outstanding_Balance")),
		}
	}

	for _, raw := range pathAccountDetails.Array(caisAccount) {
		report.CreditAccounts = append(report.CreditAccounts, Account(raw))
	}

	return report, nil
}

func fullName(applicant *xmltree.Node) string {
	return strings.TrimSpace(deref(pathFirstName.Scalar(applicant)) + " " + deref(pathLastName.Scalar(applicant)))
}

// opaque carries a sub-tree through unchanged; an empty element counts as missing.
func opaque(n *xmltree.Node) *xmltree.Node {
	if n.IsEmpty() {
		return nil
	}
	return n
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
