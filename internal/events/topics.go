package events

// Topic constants for domain events emitted by the register.
const (
	TopicTicketOpened  = "ticket.opened"
	TopicTicketClosed  = "ticket.closed"
	TopicSaleCompleted = "sale.completed"
	TopicStockLow      = "stock.low"
)

// DefaultTopics returns the canonical list of emitted topics.
func DefaultTopics() []string {
	return []string{
		TopicTicketOpened,
		TopicTicketClosed,
		TopicSaleCompleted,
		TopicStockLow,
	}
}
