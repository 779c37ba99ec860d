package telegram

// Client sends chat messages to teachers and administrators. It keeps the application
// layer independent of the bot library.
type Client interface {
	SendMessage(recipientChatID int64, text string) error
}
