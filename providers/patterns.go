package providers

// Field markers per provider. The regex markers mirror the payment fields
// the downstream contracts expect to see disclosed; everything else in the
// transcript stays redacted.

var wiseFieldMarkers = []FieldMarker{
	{Name: "paymentId", Regex: `"id":([0-9]+)`},
	{Name: "state", Regex: `"state":"([^"]+)"`},
	{Name: "timestamp", Regex: `"state":"OUTGOING_PAYMENT_SENT","date":([0-9]+)`},
	{Name: "targetAmount", Regex: `"targetAmount":([0-9\.]+)`},
	{Name: "targetCurrency", Regex: `"targetCurrency":"([^"]+)"`},
	{Name: "targetRecipientId", Regex: `"targetRecipientId":([0-9]+)`},
}

var paypalFieldMarkers = []FieldMarker{
	{Name: "transactionId", JSONPath: "$.data.details.id"},
	{Name: "status", JSONPath: "$.data.details.status"},
	{Name: "amount", JSONPath: "$.data.details.amount"},
}

// hostHeaderPattern locates the Host header in the sent transcript; it is
// the only sent-side range ever disclosed, so the verifier learns which
// server was spoken to and nothing else about the request.
const hostHeaderPattern = `(?i)host: [^\r\n]+`
