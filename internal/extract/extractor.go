// Package extract turns loosely typed backend payloads into labeled,
// display-ready fields.
package extract

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/garyjia/approvals-console/internal/domain/entity"
)

var errTrailingData = errors.New("trailing data after JSON value")

// Field labels
const (
	LabelPaymentID          = "Payment ID"
	LabelRefundAmount       = "Refund Amount"
	LabelRefundType         = "Refund Type"
	LabelSubscriptionID     = "Subscription ID"
	LabelInitialTerm        = "Initial Term"
	LabelRenewalTerm        = "Renewal Term"
	LabelAutoRenew          = "Auto Renew"
	LabelSuspensionPolicy   = "Suspension Policy"
	LabelCancellationPolicy = "Cancellation Policy"
	LabelOldValue           = "Old Value"
	LabelNewValue           = "New Value"
	LabelExistingProduct    = "Existing Product"
	LabelNewProduct         = "New Product"
)

// ExtractFields returns the labeled display fields for raw under category.
// raw may be a decoded JSON value, JSON text ([]byte, json.RawMessage or
// string) or nil. The boolean is false when nothing could be extracted.
func ExtractFields(raw interface{}, category string) (entity.Fields, bool) {
	record, ok := asObject(raw)
	if !ok {
		return nil, false
	}

	payload, ok := Payload(record)
	if !ok {
		return nil, false
	}

	var fields entity.Fields
	switch c := strings.ToLower(strings.TrimSpace(category)); {
	case c == "refund":
		fields = refundFields(record, payload)
	case containsAny(c, "termsandconditions", "terms and conditions", "terms_and_conditions"):
		fields = termsFields(record, payload)
	case c == "suspend":
		fields = suspendFields(payload)
	case containsAny(c, "cancelsubscription", "cancel subscription", "cancel_subscription"):
		fields = cancelFields(payload)
	default:
		fields = changeFields(payload, containsAny(c, "changeproduct", "change product", "change_product"))
	}

	if len(fields) == 0 {
		return nil, false
	}
	return fields, true
}

// Payload returns the raw payload nested in record under one of the raw
// payload keys, parsing it when it is JSON text. A record without a nested
// payload is its own payload.
func Payload(record map[string]interface{}) (map[string]interface{}, bool) {
	nested, found := First(record, rawPayloadKeys...)
	if !found {
		return record, record != nil
	}
	return asObject(nested)
}

// asObject normalizes raw into a JSON object
func asObject(raw interface{}) (map[string]interface{}, bool) {
	switch t := raw.(type) {
	case nil:
		return nil, false
	case map[string]interface{}:
		return t, true
	case string:
		return parseObject([]byte(t))
	case []byte:
		return parseObject(t)
	case json.RawMessage:
		return parseObject(t)
	default:
		return nil, false
	}
}

func parseObject(data []byte) (map[string]interface{}, bool) {
	v, err := Decode(data)
	if err != nil {
		return nil, false
	}
	m, ok := v.(map[string]interface{})
	return m, ok
}

func refundFields(record, payload map[string]interface{}) entity.Fields {
	var fields entity.Fields

	if id, ok := recordThenPayload(record, payload, paymentIDKeys); ok {
		fields.Add(LabelPaymentID, id)
	}
	if amount, ok := First(payload, amountKeys...); ok {
		if s, ok := FormatAmount(amount); ok {
			fields.Add(LabelRefundAmount, s)
		}
	}
	if refundType, ok := FirstString(payload, refundTypeKeys...); ok {
		fields.Add(LabelRefundType, refundType)
	}
	return fields
}

func termsFields(record, payload map[string]interface{}) entity.Fields {
	var fields entity.Fields

	if id, ok := recordThenPayload(record, payload, termsSubscriptionKeys); ok {
		fields.Add(LabelSubscriptionID, id)
	}

	terms, ok := findTerms(payload)
	if !ok {
		return fields
	}
	if last, ok := terms["lastTerm"].(map[string]interface{}); ok {
		if term, ok := formatTerm(last); ok {
			fields.Add(LabelInitialTerm, term)
		}
	}
	if renewals, ok := terms["renewalTerms"].([]interface{}); ok && len(renewals) > 0 {
		if first, ok := renewals[0].(map[string]interface{}); ok {
			if term, ok := formatTerm(first); ok {
				fields.Add(LabelRenewalTerm, term)
			}
		}
	}
	if autoRenew, ok := terms["autoRenew"]; ok && autoRenew != nil {
		fields.Add(LabelAutoRenew, YesNo(Truthy(autoRenew)))
	}
	return fields
}

// findTerms searches the payload top level, then each subscription's order
// actions, then the subscription itself.
func findTerms(payload map[string]interface{}) (map[string]interface{}, bool) {
	if terms, ok := FirstObject(payload, termsKeys...); ok {
		return terms, true
	}
	for _, key := range subscriptionsKeys {
		subs, ok := payload[key].([]interface{})
		if !ok {
			continue
		}
		for _, sub := range Objects(subs) {
			actions, _ := FirstArray(sub, orderActionsKeys...)
			for _, action := range Objects(actions) {
				if terms, ok := FirstObject(action, termsKeys...); ok {
					return terms, true
				}
			}
			if terms, ok := FirstObject(sub, termsKeys...); ok {
				return terms, true
			}
		}
	}
	return nil, false
}

func formatTerm(term map[string]interface{}) (string, bool) {
	period, ok := Scalar(term["period"])
	if !ok || period == "" || period == "0" {
		return "", false
	}
	periodType, ok := Scalar(term["periodType"])
	if !ok || periodType == "" {
		return "", false
	}
	return period + " " + periodType, true
}

func suspendFields(payload map[string]interface{}) entity.Fields {
	id, policy := findSubscriptionAction(payload, suspendKeys, suspendPolicyKeys)

	var fields entity.Fields
	if id != "" {
		fields.Add(LabelSubscriptionID, id)
	}
	if policy != "" {
		fields.Add(LabelSuspensionPolicy, policy)
	}
	return fields
}

func cancelFields(payload map[string]interface{}) entity.Fields {
	id, policy := findSubscriptionAction(payload, cancelKeys, cancellationPolicyKeys)

	var fields entity.Fields
	if id != "" {
		fields.Add(LabelSubscriptionID, id)
	}
	if policy != "" {
		fields.Add(LabelCancellationPolicy, policy)
	}
	return fields
}

// findSubscriptionAction walks subscriptions[].orderActions[] for the first
// action object under actionKeys and reads its policy. The subscription id
// is the first subscription number seen on the way.
func findSubscriptionAction(payload map[string]interface{}, actionKeys, policyKeys []string) (id, policy string) {
	for _, key := range subscriptionsKeys {
		subs, ok := payload[key].([]interface{})
		if !ok {
			continue
		}
		for _, sub := range Objects(subs) {
			if id == "" {
				id, _ = FirstString(sub, subscriptionNumberKeys...)
			}
			actions, _ := FirstArray(sub, orderActionsKeys...)
			for _, action := range Objects(actions) {
				data, ok := FirstObject(action, actionKeys...)
				if !ok {
					continue
				}
				policy, _ = FirstString(data, policyKeys...)
				break
			}
			if policy != "" {
				return id, policy
			}
		}
		if policy != "" {
			break
		}
	}
	return id, policy
}

func changeFields(payload map[string]interface{}, productChange bool) entity.Fields {
	oldLabel, newLabel := LabelOldValue, LabelNewValue
	if productChange {
		oldLabel, newLabel = LabelExistingProduct, LabelNewProduct
	}

	var oldValue, newValue string
	if names, ok := FirstObject(payload, productNamesKeys...); ok {
		oldValue, _ = FirstString(names, "old")
		newValue, _ = FirstString(names, "new")
	}
	if oldValue == "" {
		oldValue, _ = FirstString(payload, oldValueKeys...)
	}
	if newValue == "" {
		newValue, _ = FirstString(payload, newValueKeys...)
	}

	var fields entity.Fields
	if oldValue != "" {
		fields.Add(oldLabel, oldValue)
	}
	if newValue != "" {
		fields.Add(newLabel, newValue)
	}

	refs := referenceNumbers(payload)
	for i, ref := range refs {
		label := LabelSubscriptionID
		if len(refs) > 1 {
			label = fmt.Sprintf("%s %d", LabelSubscriptionID, i+1)
		}
		fields.Add(label, ref)
	}
	return fields
}

// referenceNumbers collects reference numbers from the first subscriptions
// key present, which may hold an array or a single object.
func referenceNumbers(payload map[string]interface{}) []string {
	subs, ok := First(payload, referenceListKeys...)
	if !ok {
		return nil
	}
	var refs []string
	for _, sub := range Objects(subs) {
		if ref, ok := FirstString(sub, referenceNumberKeys...); ok {
			refs = append(refs, ref)
		}
	}
	return refs
}

// recordThenPayload checks each key on the record before the payload
func recordThenPayload(record, payload map[string]interface{}, keys []string) (string, bool) {
	for _, key := range keys {
		if s, ok := FirstString(record, key); ok {
			return s, true
		}
		if s, ok := FirstString(payload, key); ok {
			return s, true
		}
	}
	return "", false
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
