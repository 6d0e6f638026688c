package extract

// Candidate key spellings, in lookup order. The first present key wins.
var (
	rawPayloadKeys = []string{"rawJson", "RawJson", "raw_json"}

	paymentIDKeys  = []string{"referenceNumber", "ReferenceNumber", "reference_number", "paymentKey", "PaymentKey"}
	amountKeys     = []string{"totalAmount", "TotalAmount", "total_amount", "amount", "Amount"}
	refundTypeKeys = []string{"type", "Type", "refundType", "RefundType"}

	termsSubscriptionKeys = []string{"referenceNumber", "subscriptionNumber"}
	termsKeys             = []string{"termsAndConditions", "TermsAndConditions", "terms_and_conditions"}

	subscriptionsKeys = []string{"subscriptions", "Subscriptions", "subscription"}
	orderActionsKeys  = []string{"orderActions", "OrderActions", "order_actions"}

	suspendKeys       = []string{"suspend", "Suspend"}
	suspendPolicyKeys = []string{"suspendPolicy", "SuspendPolicy", "suspend_policy"}

	cancelKeys             = []string{"cancelSubscription", "CancelSubscription"}
	cancellationPolicyKeys = []string{"cancellationPolicy", "CancellationPolicy", "cancellation_policy"}

	subscriptionNumberKeys = []string{"subscriptionNumber", "SubscriptionNumber", "referenceNumber"}

	productNamesKeys = []string{"productNames", "ProductNames", "product_names"}
	oldValueKeys     = []string{"oldValue", "OldValue", "old_value", "previousValue"}
	newValueKeys     = []string{"newValue", "NewValue", "new_value", "currentValue"}

	referenceListKeys   = []string{"subscriptions", "Subscriptions", "subscription", "Subscription"}
	referenceNumberKeys = []string{
		"referenceNumber", "ReferenceNumber", "reference_number",
		"refNumber", "RefNumber", "ref_number",
		"reference", "Reference",
		"refNo", "RefNo",
	}
)

