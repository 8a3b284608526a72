package dashboard

import (
	"bytes"
	"html"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/tabscope/internal/dataset"
	"github.com/KaramelBytes/tabscope/internal/metrics"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jobsCSV = "Job Title,Year,Salary,Rating\n" +
	"Web Designer II,2020,55000,4.1\n" +
	" web designer ii ,2020,57000,3.9\n" +
	"Engineer,2021,91000,\n" +
	"Engineer,2021,88000,4.4\n"

func newServer(t *testing.T, content string) *Server {
	t.Helper()
	path := filepath.Join(t.TempDir(), "MOCK_DATA.csv")
	if content != "-" {
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	opt := DefaultOptions()
	opt.DataPath = path
	opt.MaxUploadBytes = 1 << 20
	s, err := New(opt, dataset.NewLoader(dataset.DefaultOptions(), zerolog.Nop()), metrics.New(), zerolog.Nop())
	require.NoError(t, err)
	return s
}

func scrape(t *testing.T, h http.Handler) string {
	t.Helper()
	_, body := get(t, h, "/metrics")
	return body
}

func get(t *testing.T, h http.Handler, target string) (int, string) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return rec.Code, html.UnescapeString(string(body))
}

func TestIndexRendersFullAnalysis(t *testing.T) {
	s := newServer(t, jobsCSV)
	code, body := get(t, s, "/")
	require.Equal(t, http.StatusOK, code)

	for _, want := range []string{
		"Attempting to load file from: ",
		"File loaded successfully. Shape: (4, 4)",
		"DataFrame info:",
		"RangeIndex: 4 entries",
		"First few rows of the data:",
		"Available columns in the dataset:",
		"<li>Job Title</li>",
		"Summary Statistics",
		"<th>25%</th>",
		"Missing Values",
		"<td>Rating</td><td>1</td><td>25.00</td>",
		"Job Title Analysis",
		"Top 10 Job Titles",
		"Numeric Column Analysis",
		"Distribution of Year",
		"Correlation Heatmap",
		"Data Upload",
		"Feedback",
		"About",
	} {
		assert.Contains(t, body, want)
	}
	assert.NotContains(t, body, "Raw data")
	assert.NotContains(t, body, "Failed to load the data")
}

func TestIndexDrillDownDefaultsToFirstDistinctValue(t *testing.T) {
	s := newServer(t, jobsCSV)
	_, body := get(t, s, "/")
	// Engineer sorts first; both Engineer rows are shown
	assert.Contains(t, body, `<option value="Engineer" selected>Engineer</option>`)
	// two in the head preview, two in the filtered result
	assert.Equal(t, 4, strings.Count(body, "<td>Engineer</td>"))
}

func TestIndexDrillDownFiltersCaseInsensitively(t *testing.T) {
	s := newServer(t, jobsCSV)
	_, body := get(t, s, "/?"+url.Values{"column": {"Job Title"}, "value": {"web designer"}}.Encode())
	assert.Contains(t, body, "<td>Web Designer II</td>")
	assert.Contains(t, body, "<td> web designer ii </td>")
	assert.NotContains(t, body, "No data found")
}

func TestIndexDrillDownReportsNoMatches(t *testing.T) {
	s := newServer(t, jobsCSV)
	_, body := get(t, s, "/?column=Year&value=1999")
	assert.Contains(t, body, "No data found for the Year: 1999")

	_, body = get(t, s, "/?column=Year&value=abc")
	assert.Contains(t, body, "is not a number")
}

func TestIndexNumericPickerAndRawToggle(t *testing.T) {
	s := newServer(t, jobsCSV)
	_, body := get(t, s, "/?numeric=Salary&raw=1")
	assert.Contains(t, body, "Distribution of Salary")
	assert.Contains(t, body, "Raw data")
	assert.Contains(t, body, "Hide raw data")
}

func TestIndexWithoutNumericColumns(t *testing.T) {
	s := newServer(t, "Team,Owner\nred,ann\nblue,bob\n")
	_, body := get(t, s, "/")
	assert.Contains(t, body, "No numeric columns found for analysis.")
	assert.NotContains(t, body, "Correlation Heatmap")
	assert.Contains(t, body, "<th>unique</th>")
}

func TestIndexSingleNumericColumnHasNoHeatmap(t *testing.T) {
	s := newServer(t, "Team,Score\nred,1\nblue,2\n")
	_, body := get(t, s, "/")
	assert.Contains(t, body, "Distribution of Score")
	assert.NotContains(t, body, "Correlation Heatmap")
}

func TestIndexSurvivesNonFiniteNumericColumns(t *testing.T) {
	cases := []struct {
		name    string
		content string
		plotted bool
	}{
		{"infinite cell", "Team,Salary\nred,1\nblue,inf\ngreen,2\n", true},
		{"only infinite", "Team,Salary\nred,inf\nblue,-inf\n", false},
		{"overflowing range", "Team,Salary\nred,-1e308\nblue,1e308\n", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newServer(t, tc.content)
			code, body := get(t, s, "/?numeric=Salary")
			assert.Equal(t, http.StatusOK, code)
			assert.Contains(t, body, "Summary Statistics")
			if tc.plotted {
				assert.Contains(t, body, "Distribution of Salary")
			} else {
				assert.Contains(t, body, "No values to plot for Salary")
			}
		})
	}
}

func TestIndexLoadFailuresAreTerminal(t *testing.T) {
	cases := []struct {
		name    string
		content string
		message string
		kind    string
	}{
		{"empty", "", "Error: The CSV file is empty.", "empty_file"},
		{"missing", "-", "was not found.", "not_found"},
		{"malformed", "a,b\n1,2,3\n", "An unexpected error occurred: ", "parse_error"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			s := newServer(t, c.content)
			code, body := get(t, s, "/")
			require.Equal(t, http.StatusOK, code)
			assert.Contains(t, body, "Attempting to load file from: ")
			assert.Contains(t, body, c.message)
			assert.Contains(t, body, "Failed to load the data. Please check the file path and contents.")
			assert.NotContains(t, body, "File loaded successfully")
			assert.NotContains(t, body, "Summary Statistics")
			assert.NotContains(t, body, "Correlation Heatmap")
			assert.Contains(t, body, "Data Upload")
			m := scrape(t, s)
			assert.Contains(t, m, `tabscope_render_total{outcome="error"} 1`)
			assert.Contains(t, m, `tabscope_load_errors_total{kind="`+c.kind+`"} 1`)
		})
	}
}

func TestIndexUsesCacheBetweenRenders(t *testing.T) {
	s := newServer(t, jobsCSV)
	get(t, s, "/")
	get(t, s, "/")
	assert.Contains(t, scrape(t, s), "tabscope_cache_hits_total 1")
}

func upload(t *testing.T, h http.Handler, name, content string) (int, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/upload", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code, html.UnescapeString(rec.Body.String())
}

func TestUploadPreviewsWithoutTouchingDefaultDataset(t *testing.T) {
	s := newServer(t, jobsCSV)
	code, body := upload(t, s, "mine.csv", "a,b\n1,x\n2,y\n3,z\n")
	require.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, "Preview of uploaded data:")
	assert.Contains(t, body, "Uploaded data shape: (3, 2)")
	assert.Contains(t, body, "File loaded successfully. Shape: (4, 4)")
	assert.Contains(t, scrape(t, s), `tabscope_uploads_total{outcome="ok"} 1`)
}

func TestUploadReportsLoadErrors(t *testing.T) {
	s := newServer(t, jobsCSV)
	_, body := upload(t, s, "empty.csv", "")
	assert.Contains(t, body, "Error: The CSV file is empty.")
	assert.NotContains(t, body, "Uploaded data shape")
	assert.Contains(t, scrape(t, s), `tabscope_uploads_total{outcome="error"} 1`)
}

func TestUploadRejectsOversizedFiles(t *testing.T) {
	s := newServer(t, jobsCSV)
	big := "a\n" + strings.Repeat("1\n", 1<<20)
	_, body := upload(t, s, "big.csv", big)
	assert.Contains(t, body, "exceeds the 1 MB upload limit")
}

func TestUploadWithoutFile(t *testing.T) {
	s := newServer(t, jobsCSV)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/upload", strings.NewReader("feedback=x"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	s.ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), "Choose a CSV file to upload.")
}

func TestFeedbackIsAcknowledged(t *testing.T) {
	s := newServer(t, jobsCSV)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/feedback", strings.NewReader("feedback=great+dashboard"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	s.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Thank you for your feedback!")
	assert.Regexp(t, `Receipt: [0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}`, body)
	assert.NotContains(t, body, "great dashboard")
	assert.Contains(t, scrape(t, s), "tabscope_feedback_total 1")
}

func TestHealthAndMetrics(t *testing.T) {
	s := newServer(t, jobsCSV)
	code, body := get(t, s, "/healthz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok\n", body)

	get(t, s, "/")
	code, body = get(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, code)
	assert.Contains(t, body, `tabscope_render_total{outcome="ok"} 1`)
	assert.Contains(t, body, "tabscope_render_duration_seconds_count 1")
}

func TestCoolwarmEndpoints(t *testing.T) {
	assert.Equal(t, "background-color: rgb(180, 4, 38)", string(coolwarm(1)))
	assert.Equal(t, "background-color: rgb(59, 76, 192)", string(coolwarm(-1)))
	assert.Equal(t, "background-color: rgb(221, 221, 221)", string(coolwarm(0)))
}
