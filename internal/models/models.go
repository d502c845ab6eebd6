package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Section string

type PaymentType string

const (
	SectionBuy  Section = "buy"
	SectionGive Section = "give"

	PaymentTypeCash   PaymentType = "cash"
	PaymentTypeOnline PaymentType = "online"
)

type Item struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	SortOrder   int             `json:"sort_order"`
	CreatedAt   time.Time       `json:"created_at"`
}

type Payment struct {
	ID        uuid.UUID       `json:"id"`
	Type      PaymentType     `json:"type"`
	Date      time.Time       `json:"date"`
	Purpose   string          `json:"purpose"`
	Amount    decimal.Decimal `json:"amount"`
	SortOrder int             `json:"sort_order"`
	CreatedAt time.Time       `json:"created_at"`
}

type Project struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	BuyItems     []Item    `json:"buy_items"`
	BuyPayments  []Payment `json:"buy_payments"`
	GiveItems    []Item    `json:"give_items"`
	GivePayments []Payment `json:"give_payments"`
	CreatedAt    time.Time `json:"created_at"`
}

type SectionSummary struct {
	TotalItemsCost decimal.Decimal `json:"total_items_cost"`
	TotalPaid      decimal.Decimal `json:"total_paid"`
	Balance        decimal.Decimal `json:"balance"`
}

// ParseSection разбирает имя секции из запроса.
func ParseSection(value string) (Section, bool) {
	switch Section(value) {
	case SectionBuy, SectionGive:
		return Section(value), true
	}
	return "", false
}

// ParsePaymentType разбирает тип платежа.
func ParsePaymentType(value string) (PaymentType, bool) {
	switch PaymentType(value) {
	case PaymentTypeCash, PaymentTypeOnline:
		return PaymentType(value), true
	}
	return "", false
}

// Items возвращает позиции указанной секции.
func (p Project) Items(section Section) []Item {
	if section == SectionGive {
		return p.GiveItems
	}
	return p.BuyItems
}

// Payments возвращает платежи указанной секции.
func (p Project) Payments(section Section) []Payment {
	if section == SectionGive {
		return p.GivePayments
	}
	return p.BuyPayments
}

// ComputeItemTotal считает сумму позиции: количество умножить на цену за единицу.
// Арифметика десятичная, без округления.
func ComputeItemTotal(quantity, rate decimal.Decimal) decimal.Decimal {
	return quantity.Mul(rate)
}

// Summarize считает агрегаты секции по текущему снимку проекта.
// Баланс равен стоимости позиций минус сумма платежей; секции независимы.
func Summarize(project Project, section Section) SectionSummary {
	totalItemsCost := decimal.Zero
	for _, item := range project.Items(section) {
		totalItemsCost = totalItemsCost.Add(item.TotalAmount)
	}

	totalPaid := decimal.Zero
	for _, payment := range project.Payments(section) {
		totalPaid = totalPaid.Add(payment.Amount)
	}

	return SectionSummary{
		TotalItemsCost: totalItemsCost,
		TotalPaid:      totalPaid,
		Balance:        totalItemsCost.Sub(totalPaid),
	}
}
