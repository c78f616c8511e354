package extract

import (
	"strings"

	"creditlens/internal/domain"
	"creditlens/internal/xmltree"
)

var (
	pathAccountNumber   = xmltree.ParsePath("Account_Number")
	pathSubscriberName  = xmltree.ParsePath("Subscriber_Name")
	pathPortfolioType   = xmltree.ParsePath("Portfolio_Type")
	pathAccountType     = xmltree.ParsePath("Account_Type")
	pathAccountStatus   = xmltree.ParsePath("Account_Status")
	pathCurrentBalance  = xmltree.ParsePath("Current_Balance")
	pathAmountPastDue   = xmltree.ParsePath("Amount_Past_Due")
	pathOpenDate        = xmltree.ParsePath("Open_Date")
	pathCreditLimit     = xmltree.ParsePath("Credit_Limit_Amount")
	pathHighestCredit   = xmltree.ParsePath("Highest_Credit_or_Original_Loan_Amount")
	pathPaymentRating   = xmltree.ParsePath("Payment_Rating")
	pathDateReported    = xmltree.ParsePath("Date_Reported")
	pathDateClosed      = xmltree.ParsePath("Date_Closed")
	pathAccountHistory  = xmltree.ParsePath("CAIS_Account_History")
	pathHolderIDDetails = xmltree.ParsePath("CAIS_Holder_ID_Details")
)

// Account builds one credit account from a CAIS_Account_DETAILS node. Each
// field is read independently; a missing one is null and never drops the account.
func Account(raw *xmltree.Node) domain.CreditAccount {
	acc := domain.CreditAccount{
		AccountNumber:                     pathAccountNumber.Scalar(raw),
		SubscriberName:                    trimmed(pathSubscriberName.Scalar(raw)),
		PortfolioType:                     pathPortfolioType.Scalar(raw),
		AccountType:                       pathAccountType.Scalar(raw),
		AccountStatus:                     pathAccountStatus.Scalar(raw),
		CurrentBalance:                    pathCurrentBalance.Scalar(raw),
		AmountOverdue:                     pathAmountPastDue.Scalar(raw),
		OpenDate:                          pathOpenDate.Scalar(raw),
		CreditLimit:                       pathCreditLimit.Scalar(raw),
		HighestCreditOrOriginalLoanAmount: pathHighestCredit.Scalar(raw),
		PaymentRating:                     pathPaymentRating.Scalar(raw),
		DateReported:                      pathDateReported.Scalar(raw),
		DateClosed:                        pathDateClosed.Scalar(raw),
		HolderDetails:                     opaque(raw.Child("CAIS_Holder_Details")),
		AddressDetails:                    opaque(raw.Child("CAIS_Holder_Address_Details")),
		HolderIDDetails:                   pathHolderIDDetails.Array(raw),
	}

	entries := pathAccountHistory.Array(raw)
	acc.History = make([]domain.HistoryEntry, 0, len(entries))
	for _, h := range entries {
		acc.History = append(acc.History, domain.HistoryEntry{
			Year:                field(h, "Year"),
			Month:               field(h, "Month"),
			DaysPastDue:         field(h, "Days_Past_Due"),
			AssetClassification: field(h, "Asset_Classification"),
		})
	}
	return acc
}

// field reads a direct child of a history entry. Only text children count.
func field(n *xmltree.Node, name string) *string {
	c := n.Child(name)
	if c == nil || c.Kind() != xmltree.KindLeaf {
		return nil
	}
	s := c.Text()
	return &s
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
