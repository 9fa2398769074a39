/*
schedule.go - Amortization projection

PURPOSE:
  Projects the future installment schedule for an obligation from its
  remaining balance. Each installment splits the fixed payment amount
  into interest (accrued on the running balance) and principal, with the
  final installment clamped so the balance never goes negative.

PROJECTION vs LEDGER:
  A projection answers "what WOULD the schedule look like from here?".
  It never touches persisted payment rows and is deterministic given the
  same inputs: each call is independent, restartable, and carries no
  hidden state.

SEE ALSO:
  - calendar.go: date stepping used between installments
  - ledger.go:   derives the first due date from the payment history
*/
package finance

import "github.com/shopspring/decimal"

var twelve = decimal.NewFromInt(12)

// ScheduleRequest are the inputs for one projection run.
type ScheduleRequest struct {
	Balance       decimal.Decimal // remaining balance to amortize
	AnnualRate    decimal.Decimal // percent, 0-100
	Frequency     Frequency
	PaymentAmount decimal.Decimal
	FirstDue      Date // date of the first projected installment
	EndDate       Date // obligation end date, hard stop
	Horizon       int  // maximum number of installments to emit
}

// ProjectSchedule emits installments until the horizon is reached, the
// next date passes the end date, or the balance reaches zero.
//
// The period interest rate is the monthly-equivalent annual_rate/100/12
// applied per installment regardless of frequency.
// TODO: scale the period rate with the actual period length (a quarterly
// installment should accrue ~3x the monthly interest); kept at the
// monthly rate for parity with previously issued schedules.
func ProjectSchedule(req ScheduleRequest) []Installment {
	if req.Horizon <= 0 {
		return nil
	}

	monthlyRate := req.AnnualRate.Div(hundred).Div(twelve)
	balance := req.Balance
	date := req.FirstDue

	var schedule []Installment
	for i := 0; i < req.Horizon; i++ {
		if date.After(req.EndDate) || !balance.IsPositive() {
			break
		}

		interest := balance.Mul(monthlyRate)

		// Clamp the final installment: principal never exceeds what's left.
		principal := req.PaymentAmount.Sub(interest)
		if principal.GreaterThan(balance) {
			principal = balance
		}
		remaining := balance.Sub(principal)

		schedule = append(schedule, Installment{
			Index:          i + 1,
			Date:           date,
			Amount:         req.PaymentAmount,
			Principal:      principal,
			Interest:       interest,
			RemainingAfter: remaining,
		})

		balance = remaining
		date = AddInterval(date, req.Frequency, req.EndDate)
	}
	return schedule
}
