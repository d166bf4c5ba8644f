// Package mailtm provides a Go client for mail.tm, a disposable email
// service with a JSON-LD REST API.
//
// Every Client method performs exactly one HTTP request, checks the status
// code against the success set {200, 201, 204}, and either decodes the body
// into a typed record or returns an *Error carrying the operation's
// ErrorKind, the status code and the raw body. Transport failures are
// returned as *NetworkError. The client never retries.
//
// Basic usage:
//
//	client, err := mailtm.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Create a throwaway account on the first available domain
//	mailbox, err := client.CreateMailbox(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	msgs, err := mailbox.Messages(ctx, 1)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, m := range msgs.Member {
//	    fmt.Println(m.From.Address, m.Subject)
//	}
//
// Errors can be matched by kind:
//
//	if errors.Is(err, mailtm.ErrUnauthorized) {
//	    // token missing, invalid or expired
//	}
package mailtm
