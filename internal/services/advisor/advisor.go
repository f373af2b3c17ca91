// Package advisor turns an assessment into a short customer-facing
// explanation. It is advisory only and never changes a decision.
package advisor

import (
	"fmt"
	"unicode/utf8"

	"scamshield/internal/services/risk"
)

const (
	maxMemoRunes  = 240
	maxKeyReasons = 4
	highMuleScore = 80
)

var recommendations = []string{
	"Verify the recipient via official channels (do not trust numbers from messages).",
	"Do not proceed if pressured for urgency or secrecy.",
	"If investment-related: check license/company in the official register.",
}

// Payment is the redacted view of a payment shown alongside an explanation.
type Payment struct {
	SourceIBAN      string       `json:"src_account_iban"`
	DestinationIBAN string       `json:"dst_account_iban"`
	Amount          float64      `json:"amount"`
	Currency        string       `json:"currency"`
	Channel         risk.Channel `json:"channel"`
	FirstToPayee    bool         `json:"is_first_to_payee"`
	Memo            string       `json:"description"`
}

type Explanation struct {
	Summary         string   `json:"summary"`
	KeyReasons      []string `json:"key_reasons"`
	Recommendations []string `json:"recommendations"`
}

// Explain builds the explanation from the signals of an assessment.
func Explain(s risk.Signals) Explanation {
	var reasons []string
	if !s.PayeeCheck.Passed() {
		reasons = append(reasons, "Recipient name mismatch (CoP failed)")
	}
	if s.MuleScore >= highMuleScore {
		reasons = append(reasons, fmt.Sprintf("High mule risk (%d)", s.MuleScore))
	}
	if s.Watchlisted {
		reasons = append(reasons, "Recipient on bank watchlist")
	}
	if s.HasProbability {
		reasons = append(reasons, fmt.Sprintf("Model p(scam) ≈ %.0f%%", s.Probability*100))
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "No strong scam indicators")
	}
	if len(reasons) > maxKeyReasons {
		reasons = reasons[:maxKeyReasons]
	}

	return Explanation{
		Summary:         reasons[0],
		KeyReasons:      reasons,
		Recommendations: append([]string(nil), recommendations...),
	}
}

// Redact masks both IBANs and shortens the memo.
func Redact(f risk.Features) Payment {
	return Payment{
		SourceIBAN:      MaskIBAN(f.Source),
		DestinationIBAN: MaskIBAN(f.Destination),
		Amount:          f.Amount,
		Currency:        f.Currency,
		Channel:         f.Channel,
		FirstToPayee:    f.FirstToPayee,
		Memo:            truncate(f.Memo, maxMemoRunes),
	}
}

// MaskIBAN keeps the country code and the last four characters.
func MaskIBAN(iban string) string {
	if len(iban) <= 8 {
		return iban
	}
	return iban[:2] + "…" + iban[len(iban)-4:]
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "…"
}
