package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ericfisherdev/bakelink/internal/adapter/driven/bakelink"
)

// printResponse writes a response body, indenting JSON and passing anything
// else through verbatim.
func printResponse(w io.Writer, resp *bakelink.Response) error {
	body := bytes.TrimSpace(resp.Body)
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		var out bytes.Buffer
		if err := json.Indent(&out, body, "", "  "); err != nil {
			return fmt.Errorf("format response: %w", err)
		}
		out.WriteByte('\n')
		_, err := out.WriteTo(w)
		return err
	}
	_, err := w.Write(resp.Body)
	return err
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to format JSON: %w", err)
	}
	return nil
}

func printStatusTable(w io.Writer, st sessionStatus) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "API URL\t%s\n", st.APIURL)
	fmt.Fprintf(tw, "DATABASE\t%s\n", st.DBPath)
	fmt.Fprintf(tw, "ENCRYPTED\t%s\n", yesNo(st.Encrypted))
	fmt.Fprintf(tw, "LOGGED IN\t%s\n", yesNo(st.LoggedIn))
	if st.TokenSavedAt != nil {
		fmt.Fprintf(tw, "TOKEN SAVED\t%s\n", st.TokenSavedAt.Local().Format(time.DateTime))
	}
	return tw.Flush()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
