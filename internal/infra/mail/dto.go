package mail

type npsEmailData struct {
	Subject    string
	Paragraphs []string
}

type EmailSender struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	dialer   dialer
}
