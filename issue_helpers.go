package strictmodel

import "github.com/reoring/strictmodel/i18n"

// IssueAt creates an Issue at the given path with a translated message.
// data is forwarded to the translator (keys such as "expected" or "actual").
func IssueAt(p Path, code string, data map[string]string) Issue {
	it := Issue{Path: p, Code: code, Message: i18n.T(code, data)}
	if data != nil {
		it.Expected = data["expected"]
		it.Actual = data["actual"]
	}
	return it
}

func mismatch(p Path, code, expected, actual string) Issue {
	return IssueAt(p, code, map[string]string{"expected": expected, "actual": actual})
}

func singleIssue(p Path, code string, data map[string]string) Issues {
	return Issues{IssueAt(p, code, data)}
}
