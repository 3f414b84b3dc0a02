package erp

import (
    "errors"
    "regexp"
    "strings"
)

var boilerplateRe = regexp.MustCompile(`(?i)Write failed for table row of type .*?\.\s*`)
var warningPrefixRe = regexp.MustCompile(`(?i)^Warning:\s*`)

// Classify turns a raw remote failure into a short operator-actionable
// message. It prefers the nested inner error, digs the first functional
// warning out of an embedded Infolog section, and strips known write
// boilerplate. It never fails: anything it cannot parse comes back as-is.
func Classify(err error) string {
    if err == nil {
        return ""
    }
    var re *RemoteError
    if errors.As(err, &re) {
        return ClassifyMessage(re.Message())
    }
    return ClassifyMessage(err.Error())
}

// ClassifyMessage applies the Infolog/boilerplate rules to a bare message.
func ClassifyMessage(msg string) string {
    if idx := strings.Index(msg, "Infolog:"); idx >= 0 {
        infolog := msg[idx+len("Infolog:"):]
        warnings := strings.Split(infolog, ";")
        for i := range warnings {
            warnings[i] = strings.TrimSpace(warnings[i])
        }
        // First warning that is not validation or write-failure noise.
        for _, w := range warnings {
            lw := strings.ToLower(w)
            if strings.Contains(w, "Warning:") &&
                !strings.Contains(lw, "validatefield") &&
                !strings.Contains(lw, "write failed") {
                return strings.TrimSpace(warningPrefixRe.ReplaceAllString(w, ""))
            }
        }
        for _, w := range warnings {
            if strings.Contains(w, "Warning:") {
                return strings.TrimSpace(warningPrefixRe.ReplaceAllString(w, ""))
            }
        }
        return strings.TrimSpace(infolog)
    }
    return strings.TrimSpace(boilerplateRe.ReplaceAllString(msg, ""))
}
