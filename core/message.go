package core

import "fmt"

// loginMessageTemplate is the exact text a wallet owner signs to prove
// control of an address for a specific nonce. Clients pre-sign against this
// template, so any change to its bytes is a breaking protocol change.
const loginMessageTemplate = `Welcome

Click to sign in and accept the Terms of Service
This request will not trigger a blockchain transaction or cost any gas fees.
Your authentication status will reset after 24 hours.

Wallet address:
%s

Nonce:
%s`

// BuildLoginMessage renders the canonical login message for an address and
// nonce. Byte-for-byte deterministic: the same inputs always produce the
// same message.
func BuildLoginMessage(address, nonce string) string {
	return fmt.Sprintf(loginMessageTemplate, address, nonce)
}
