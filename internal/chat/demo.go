package chat

import "strings"

// Canned replies used when no model credential is configured. Keyword groups
// are checked in order; first match wins.
var demoResponses = map[string]string{
	"default": "Thanks for trying the Maru AI Chatbot! This is a demo response. To get real AI-powered responses, please add your GEMINI_API_KEY to the environment. You can learn about our services at maruonline.com or email us at hello@maruonline.com.",
	"lead":    "Our Lead Generation Automation service transforms raw data into qualified sales opportunities. We use AI-powered enrichment and smart scoring to help you find the best leads for your business. Would you like to schedule a consultation?",
	"sales":   "Sales Systems Automation helps you supercharge your CRM with AI. We can help you automate follow-ups, manage your pipeline, and give your sales team more time to actually sell. Interested in learning more?",
	"office":  "Office Operations Automation streamlines your back-office workflows. From invoice processing to document routing, we help you eliminate manual work and focus on what matters. Want to discuss your specific needs?",
	"pricing": "We offer three tiers: Starter (R4,950/month), Growth (R12,500/month), and Enterprise (R28,000+/month). Each tier includes our core automation services with varying levels of support and customization. Which one sounds right for your business?",
}

// DemoResponse routes a user message to a canned reply by keyword. It is
// deterministic and makes no network calls.
func DemoResponse(userMessage string) string {
	msg := strings.ToLower(userMessage)
	switch {
	case strings.Contains(msg, "lead"):
		return demoResponses["lead"]
	case strings.Contains(msg, "sales"), strings.Contains(msg, "crm"):
		return demoResponses["sales"]
	case strings.Contains(msg, "office"), strings.Contains(msg, "operation"):
		return demoResponses["office"]
	case strings.Contains(msg, "price"), strings.Contains(msg, "cost"), strings.Contains(msg, "pricing"):
		return demoResponses["pricing"]
	default:
		return demoResponses["default"]
	}
}
