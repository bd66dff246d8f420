package prompts

// System is the system instruction shared by every model call.
const System = "You are a senior investment due diligence analyst. You read founder-supplied material (pitch decks, whitepapers, blog posts, specifications) and produce accurate, well-sourced analysis in English. Never invent facts that are not supported by the provided documents; when information is missing, say so explicitly."

const createInitialSummary = `The documents above were supplied for the project "{{.ProjectName}}".

Produce an initial due diligence summary as JSON:

1.  **project_name**: "{{.ProjectName}}".
2.  **short_summary**: two or three sentences describing what the project does and for whom.
3.  **long_summary**: a thorough overview of the project, its product, market, team, traction and business model, drawing on every document.
4.  **sources**: one entry per document above, in the order given, with:
    - name: the document file name exactly as shown.
    - detected_type: one of pitch_deck, whitepaper, blog, other.
    - detected_language: ISO 639-1 code of the document's language.
    - published_or_version_date: YYYY-MM-DD if the document states one, otherwise null.
    - key_claims: the main claims the document makes.
    - data_points: numbers, metrics, TAM/SAM/SOM figures and KPIs.
    - caveats: limits or uncertainties you noticed.
    - short_summary: one or two sentences about this document.

Return ONLY the JSON object.`

const createShortDescription = `Using the initial summary above, write a short description of the project in 50 to 100 words.

Write plain prose in English, with no headings or bullet points. Return ONLY the description.`

const createLongDescription = `Using the initial summary above, write a comprehensive description of the project in 500 to 1000 words.

Cover the problem, the product, the target market, the team, traction to date, the business model and the main open questions. Use Markdown with a small number of section headings. Return ONLY the description.`

const extractMetadata = `Extract structured metadata for the document "{{.FileName}}" from the project "{{.ProjectName}}". The initial summary is provided for context.

Return a JSON object with:
- title: a precise, descriptive title taken from the document content.
- original_filename: "{{.FileName}}".
- doc_type: one of pitch_deck, whitepaper, blog, spec, other.
- published_or_version_date: YYYY-MM-DD if found, otherwise null.
- language_detected: ISO 639-1 code of the original language (e.g. en, es, fr).
- summary_improved: a 3 to 6 sentence summary capturing the key points.
- key_claims: the main claims or assertions.
- sources: internal references, links or citations (may be empty).
- provenance_notes: a brief explanation of how the document was processed.

Return ONLY the JSON object.`

const standardizeContent = `Convert the document "{{.FileName}}" from the project "{{.ProjectName}}" into clean English Markdown. Its extracted metadata is provided for context.

Follow these instructions:

1.  **Translate**: if the document is not in English, translate it faithfully.
2.  **Preserve**: keep every fact, figure, table and list. Normalize tables into Markdown tables.
3.  **Images**: replace each image or chart with a short description of what it shows.
4.  **Clean**: drop page numbers, repeated headers and footers, and layout artifacts.
5.  **Structure**: use a single top-level heading with the document title and consistent heading levels below it.

Return ONLY the Markdown content. Do not wrap it in code fences.`

const generateFindings = `Review every standardized document and the initial summary above for the project "{{.ProjectName}}" as an investor would.

Return a JSON object with exactly 5 risks, exactly 5 opportunities and exactly 5 questions.

- Every risk has id (R1..R5), title, category, severity (low, medium, high), horizon (short, medium, long), description, evidence, mitigation (a list of actions) and confidence between 0 and 1.
- Every opportunity has id (O1..O5), title, category, impact (moderate, high, transformational), description, prerequisites, evidence and confidence between 0 and 1.
- Every question has id (Q1..Q5), question, rationale, expected_signal (what a good answer would show) and evidence.
- category is one of: tech, product, market, team, legal, finance, go_to_market, competition, security, regulatory.
- evidence is a list of citations, each with file (the standardized file name) and quote (a short verbatim snippet from that file).

Return ONLY the JSON object.`

const writeFullReport = `Write the full due diligence report for the project "{{.ProjectName}}" using every document above: the standardized files, the initial summary, and the risks, opportunities and questions.

The report should be 15 to 20 pages of Markdown and include:
- an executive summary with a clear recommendation,
- sections on product and technology, market and competition, team, business model and financials, legal and regulatory exposure,
- a discussion of every risk and opportunity with its evidence,
- the open questions for the founders,
- an appendix listing the source documents.

Cite the standardized file names when referring to evidence. Return ONLY the Markdown report.`

const writeShortReport = `Write a short due diligence report for the project "{{.ProjectName}}" using every document above: the standardized files, the initial summary, and the risks, opportunities and questions.

Keep it to at most 5 pages of Markdown: a one-paragraph verdict, the top risks and opportunities, and the questions that most need answers before investing. Return ONLY the Markdown report.`

var sources = map[string]string{
	CreateInitialSummary:   createInitialSummary,
	CreateShortDescription: createShortDescription,
	CreateLongDescription:  createLongDescription,
	ExtractMetadata:        extractMetadata,
	StandardizeContent:     standardizeContent,
	GenerateFindings:       generateFindings,
	WriteFullReport:        writeFullReport,
	WriteShortReport:       writeShortReport,
}
