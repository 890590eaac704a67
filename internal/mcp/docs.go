package mcp

import (
	"context"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
)

const serverInstructions = `hrv-ingest stores heart-rate-variability recordings as Users → Measurements → {raw samples, processed metrics}.

Core concepts:
- User: a participant identified by an integer id taken from the source file name.
- Measurement: one recording session, identified by a measurement_id shared by its raw samples and its processed row.
- Raw sample: one beat interval (ms) at an absolute timestamp, optionally labeled with the protocol activity.
- Processed metrics: one row of report values per measurement (spectral bands, composite scores, signed percent deviations).
- Ingest log: one entry per session step of every ingestion run (inserted, skipped or failed, with an error class).

Suggested workflow:
1) list_users or list_measurements to orient (use limit/offset).
2) get_processed_metrics for session-level values; get_raw_samples pages through beat intervals.
3) get_ingest_log to explain why a session is missing or incomplete (filter by status=failed).
4) ingest_path re-runs ingestion for a folder under the configured root; re-runs skip data already stored.

Docs:
- hrv://docs/data-model
- hrv://docs/source-layout
`

type docResource struct {
	URI         string
	Name        string
	Title       string
	Description string
	Content     string
}

var docResources = []docResource{
	{
		URI:         "hrv://docs/data-model",
		Name:        "docs_data_model",
		Title:       "Stored relations",
		Description: "Columns of users, raw_samples, processed_metrics and ingest_log, with key and sign conventions.",
		Content: `# Stored relations

## users
` + "`id`" + ` (primary key), ` + "`age`" + ` (nullable), ` + "`gender`" + `, ` + "`clinical_history`" + `, ` + "`notes`" + `.
Created the first time a measurement of the user is ingested and never updated.

## raw_samples
Key ` + "`(measurement_id, recorded_at)`" + `. ` + "`interval_ms`" + ` is the beat interval that starts at ` + "`recorded_at`" + `.
` + "`activity`" + ` is null when no protocol row covers the timestamp. ` + "`doctor_comment`" + ` repeats the session comment.

## processed_metrics
Key ` + "`measurement_id`" + `. ` + "`measured_at`" + ` is the reported measurement date, or the session start when the reports carry none.
Every ` + "`*_percent`" + ` column is signed: negative for "below average" and "older", positive otherwise.
Night columns (` + "`*_night`" + `) come from the sleep column of the medical analysis.

## ingest_log
One row per run, session and step (` + "`read`" + `, ` + "`user`" + `, ` + "`raw_samples`" + `, ` + "`processed_metrics`" + `).
` + "`status`" + ` is inserted, skipped or failed; ` + "`error_class`" + ` is parse, not_found, duplicate, integrity or internal.
`,
	},
	{
		URI:         "hrv://docs/source-layout",
		Name:        "docs_source_layout",
		Title:       "Source folder layout",
		Description: "How ingestion finds interval logs, reports, protocols and participant files.",
		Content: `# Source folder layout

    <root>/<user>/participant.yaml | participant.xlsx
    <root>/<user>/<date>/<interval log>.txt
    <root>/<user>/<date>/*vital*overview*.txt   overview report
    <root>/<user>/<date>/*vital*.txt            vitals report
    <root>/<user>/<date>/*med*.txt              medical analysis
    <root>/<user>/<date>/*activity*.xlsx|.csv   activity protocol
    <root>/<user>/<date>/session.yaml           doctor_comment

A date folder without an interval log is ignored. A missing report only leaves its fields empty.
`,
	},
}

func registerDocResources(server *sdkmcp.Server) {
	for _, doc := range docResources {
		doc := doc

		server.AddResource(&sdkmcp.Resource{
			URI:         doc.URI,
			Name:        doc.Name,
			Title:       doc.Title,
			Description: doc.Description,
			MIMEType:    "text/markdown",
			Size:        int64(len(doc.Content)),
		}, func(_ context.Context, req *sdkmcp.ReadResourceRequest) (*sdkmcp.ReadResourceResult, error) {
			uri := doc.URI
			if req != nil && req.Params != nil && req.Params.URI != "" {
				uri = req.Params.URI
			}
			return &sdkmcp.ReadResourceResult{
				Contents: []*sdkmcp.ResourceContents{{
					URI:      uri,
					MIMEType: "text/markdown",
					Text:     doc.Content,
				}},
			}, nil
		})
	}
}
