package ocr

// invoiceExtractionPrompt instructs the model to return the strict JSON
// contract consumed by invoice.ParseExtraction. The model is responsible for
// distributing document-level discounts across line items and applying IVA;
// the adapter downstream only coerces malformed values.
const invoiceExtractionPrompt = "You are an invoice parser for vehicle workshop and parts supplier invoices " +
	"(Portuguese or English).\n\n" +
	"Task:\n" +
	"- Extract ALL line items from the attached invoice.\n" +
	"- Output STRICT JSON only (no comments, no trailing commas, no extra text).\n" +
	"- Output a single JSON object.\n\n" +
	"The object must have these fields:\n" +
	"- \"invoice_date\": string, ISO format \"YYYY-MM-DD\", or null if unreadable\n" +
	"- \"items\": array of objects, one per line item\n\n" +
	"Each item must have these fields:\n" +
	"- \"description\": string, the line item text as printed\n" +
	"- \"quantity\": number\n" +
	"- \"unit_price\": number, price per unit before tax\n" +
	"- \"total\": number, line total before tax, after any discount\n" +
	"- \"iva_rate\": number, IVA percentage applied to this line (0 if exempt)\n" +
	"- \"iva_amount\": number, IVA amount for this line\n" +
	"- \"total_excl_tax\": number\n" +
	"- \"total_incl_tax\": number\n\n" +
	"Rules:\n" +
	"- If the invoice shows a document-level discount, distribute it across line items " +
	"proportionally to their totals before computing per-line tax.\n" +
	"- If a numeric value is unreadable, use null.\n" +
	"- Do NOT invent line items; extract only what is printed.\n\n" +
	"Return ONLY valid raw JSON.\n" +
	"Do NOT wrap the response in code fences.\n" +
	"Do NOT use ```json or any Markdown.\n" +
	"Output must begin with \"{\" and end with \"}\".\n"
