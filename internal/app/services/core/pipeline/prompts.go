package pipeline

import (
	"fmt"
	"strings"
)

// The payer-name plus authorization-language rule below is the single
// disambiguation heuristic for approval letters. It appears in both the
// classification and approval tasks and must stay identical in both.
const approvalDetectionRule = `SIMPLE RULE: A document is an approval/authorization/referral letter if BOTH conditions are met:
1. The document contains an INSURANCE COMPANY NAME, TPA NAME, or PAYER NAME (in letterhead, header, or body)
2. The document contains AUTHORIZATION/SANCTION STATEMENTS such as:
   - "we authorize", "we sanction", "we approve", "we clear"
   - "this is to authorize", "this is to sanction", "this is to approve"
   - "authorized", "sanctioned", "approved", "cleared" (in context of treatment/claim)
   - "authorization is granted", "sanction is granted", "approval is granted"
   - "we hereby authorize", "we hereby sanction", "we hereby approve"
   - Any statement indicating the insurance company/TPA is authorizing, sanctioning, or approving something

CRITICAL: If a document has an insurance company/TPA name AND contains phrases like "we authorize", "we sanction", "we approve", or similar authorization statements, it IS an approval letter (100% certain).`

func classificationTask(numDocs int) string {
	return fmt.Sprintf(`You are analyzing %d uploaded file(s). Each file has been assigned an index from 0 to %d.

Classify each of the %d file(s) into categories.

CRITICAL: Work with utmost integrity. NO assumptions. NO hallucinations. Base classification ONLY on actual document content visible in the files.

Categories:
- discharge_summary: Discharge summaries, clinical notes, death summaries
- clinical: Clinical documents, ICP notes, treatment notes
- invoice: Invoices, bills, financial documents, itemized bills, final bills
- reports: Lab reports, radiology reports, imaging reports, pathology reports, investigation reports
- approval: Approval letters, authorization letters, referral letters, pre-auth letters, final approval letters, sanction letters, clearance letters, cashless approval letters
- other: ID cards (Aadhar, PAN, Employee ID), policy documents, cover letters, other documents

APPROVAL/AUTHORIZATION/REFERRAL LETTER DETECTION (CRITICAL - READ CAREFULLY):

%s

Be liberal - if you see insurance company name + authorization/sanction language, classify as "approval".

Return JSON with EXACTLY %d entries, one for each file:
{
  "documents": [
    {
      "file_index": 0,
      "document_type": "discharge_summary/invoice/reports/approval/clinical/other",
      "confidence": "high/medium/low",
      "reason": "brief reason"
    }
  ]
}

CRITICAL RULES FOR file_index:
- You have EXACTLY %d file(s) to classify
- file_index MUST be from 0 to %d (0-based indexing)
- Return EXACTLY %d document entries, one per file
- Do NOT skip any files
- Do NOT use file_index values outside the range 0-%d

CRITICAL RULES:
- Check EVERY page of EVERY document thoroughly
- Base classification ONLY on actual document content visible in files
- NO assumptions about document type
- NO hallucinations - if uncertain, use "other" category
- Return valid JSON only. Same documents = same classification.`,
		numDocs, numDocs-1, numDocs, approvalDetectionRule, numDocs, numDocs, numDocs-1, numDocs, numDocs-1)
}

func caseContextTask(numFiles int) string {
	return fmt.Sprintf(`Analyze %d discharge summary/clinical document(s) to understand complete case context.

CRITICAL: Extract ONLY information explicitly present in documents. NO assumptions. NO hallucinations. If information is not visible, use null.

SURGERY DETECTION (CRITICAL):
A case is a SURGERY CASE if the document mentions ANY of the following:
- "surgery", "surgical", "operation", "operative", "surgical procedure"
- "OT" (Operation Theatre), "operating room", "operating theatre"
- Names of surgical procedures (e.g., "appendectomy", "cholecystectomy", "hysterectomy", "laparotomy", "arthroscopy", "endoscopy", "angioplasty", "stent", "fixation", "replacement", "implant", "graft")
- "pre-operative", "post-operative", "intra-operative"
- "surgeon", "surgical team", "surgical notes", "operation notes", "OT notes"
- "anesthesia", "anesthesia given", "under anesthesia"
- "incision", "sutures", "surgical site", "wound"

If ANY of these are mentioned, the case is a SURGERY CASE. Extract ALL procedures performed, including surgical procedures.

Return JSON:
{
  "case_summary": {
    "patient_name": "full name",
    "admission_reason": "reason for admission",
    "primary_diagnosis": ["diagnosis list"],
    "procedures_performed": [
      {"procedure_name": "name", "date": "YYYY-MM-DD or null", "is_surgery": true/false}
    ],
    "investigations_done": [
      {"investigation_name": "name", "date": "YYYY-MM-DD or null"}
    ],
    "admission_date": "YYYY-MM-DD or null",
    "discharge_date": "YYYY-MM-DD or null",
    "discharge_condition": "Stable/Improved/Critical/Expired/Other",
    "treating_doctor": "name or null",
    "is_surgery_case": true/false,
    "surgery_indicators": ["list of surgery-related terms found in document"]
  },
  "patient_information": {
    "patient_name": "full name",
    "patient_id": "ID or null",
    "date_of_birth": "YYYY-MM-DD or null",
    "age_years": null,
    "gender": "Male/Female/Other/Unknown"
  }
}

CRITICAL RULES:
- Extract ONLY information explicitly visible in documents
- NO assumptions - if not visible, use null
- Set is_surgery_case=true if ANY surgery-related terms found
- Return valid JSON only. Same documents = same output.`, numFiles)
}

func invoiceTask(numFiles int) string {
	return fmt.Sprintf(`Analyze %d invoice/bill document(s) to extract ALL line items and financial information.

CRITICAL: Extract ONLY information explicitly present in documents. Extract EVERY line item from tables and lists.

Return JSON:
{
  "payer_information": {
    "payer_type": "Insurer/TPA/Corporate/Govt Scheme/Unknown",
    "payer_name": "normalized payer name or null"
  },
  "hospital_information": {
    "hospital_name": "normalized hospital name or null",
    "hospital_id": "ID or null"
  },
  "patient_information": {
    "patient_name": "full name or null",
    "patient_id": "ID or null",
    "date_of_birth": "YYYY-MM-DD or null",
    "gender": "Male/Female/Other/Unknown"
  },
  "invoice_number": "invoice/bill number or null",
  "invoice_date": "YYYY-MM-DD or null",
  "total_claimed_amount": 0.0,
  "line_items": [
    {
      "item_name": "name of item",
      "item_code": "ICD-11/CGHS/internal code or null",
      "code_valid": "true if the code is well-formed and plausible for the item, false if not, null when no code",
      "date": "YYYY-MM-DD or null",
      "units": 1,
      "unit_price": 0.0,
      "total_price": 0.0,
      "type": "procedure/investigative/administrative/non_medical/support_services/room_charges/clinical_services/other",
      "category": "category or null"
    }
  ]
}

CRITICAL RULES:
- Extract ALL line items from ALL pages
- Extract from tables, lists, and any format
- NO assumptions - if not visible, use null
- Return valid JSON only.`, numFiles)
}

func reportsTask(investigativeItems []string) string {
	limit := investigativeItems
	if len(limit) > 10 {
		limit = limit[:10]
	}
	return fmt.Sprintf(`Check ALL uploaded documents for investigation reports matching these billed investigations: %s

CRITICAL: Return ONLY valid JSON. No explanations, no markdown, just pure JSON.

Return this EXACT JSON structure (use empty dict/array if no reports found):
{
  "reports_by_item": {
    "item_name": true/false
  },
  "report_dates": {
    "item_name": "YYYY-MM-DD date printed on the matching report, or null"
  },
  "reports_found": ["list of report names found"]
}

RULES:
- Check EVERY page of EVERY document
- Reports may be embedded in other documents
- Return valid JSON only - no trailing commas, no unclosed strings
- If no reports found, return empty objects/arrays`, strings.Join(limit, ", "))
}

func approvalTask(numFiles int, claimedAmount float64) string {
	return fmt.Sprintf(`Search ALL %d document(s) for approval/authorization/referral letters. Check EVERY page of EVERY document.

%s

CLAIMED AMOUNT: %.2f

CRITICAL: Extract the APPROVED AMOUNT or AUTHORIZED AMOUNT from the approval letter. Look for:
- "approved amount", "authorized amount", "sanctioned amount", "admissible amount"
- Any monetary value labeled as "approved", "authorized", "sanctioned", or "admissible"

Return JSON:
{
  "approval_found": true/false,
  "approval_type": "Final Approval/Discharge Approval/Interim Approval/Pre-Auth/Referral/None",
  "approval_reference": "authorization number or null",
  "approval_date": "YYYY-MM-DD or null",
  "approval_valid_from": "YYYY-MM-DD or null",
  "approval_valid_to": "YYYY-MM-DD or null",
  "approved_amount": 0.0,
  "authorized_amount": 0.0,
  "sanctioned_amount": 0.0,
  "admissible_amount": 0.0,
  "payer_info": {
    "payer_type": "Insurer/TPA/Corporate/Govt Scheme/Unknown",
    "payer_name": "normalized payer name or null"
  },
  "patient_information": {
    "patient_name": "full name or null",
    "patient_id": "ID or null",
    "date_of_birth": "YYYY-MM-DD or null",
    "gender": "Male/Female/Other/Unknown"
  },
  "approval_conditions": ["list of conditions"]
}

IMPORTANT: Extract the approved/authorized/sanctioned/admissible amount from the approval letter. Use the highest value found if multiple amounts are mentioned.

CRITICAL: Search ALL documents thoroughly - approval letters may be embedded.`, numFiles, approvalDetectionRule, claimedAmount)
}

func checklistTask(caseSummary string, lineItemCount int, payerType string) string {
	return fmt.Sprintf(`Based on case context, analyze case-specific document requirements.

Case Summary: %s
Line Items: %d items
Payer Type: %s

Return JSON:
{
  "checklist": [
    {
      "document_name": "document name",
      "required": true/false,
      "enclosed": true/false,
      "reason": "why required",
      "notes": "additional notes"
    }
  ]
}`, caseSummary, lineItemCount, payerType)
}
