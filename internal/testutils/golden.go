package testutils

import (
	"os"
	"path"

	"github.com/pmezard/go-difflib/difflib"
)

type TestingT interface {
	Helper()
	Log(args ...interface{})
	Logf(format string, args ...interface{})
	Error(args ...interface{})
	Fatal(args ...interface{})
}

// CheckGoldenFile compares actual with the golden file at expectFilePath,
// reporting a unified diff on mismatch. A missing golden file is created from
// actual so new cases bootstrap themselves on first run.
func CheckGoldenFile(t TestingT, actual []byte, expectFilePath string) {
	t.Helper()

	expect, err := os.ReadFile(expectFilePath)
	if os.IsNotExist(err) {
		err = os.MkdirAll(path.Dir(expectFilePath), 0755)
		if err != nil {
			t.Fatal(err)
		}
		err = os.WriteFile(expectFilePath, actual, 0444)
		if err != nil {
			t.Fatal(err)
		}
		t.Logf("golden file %s created", expectFilePath)
		return
	} else if err != nil {
		t.Error(err)
		return
	}

	if string(expect) == string(actual) {
		return
	}

	diff := difflib.UnifiedDiff{
		A:       difflib.SplitLines(string(expect)),
		B:       difflib.SplitLines(string(actual)),
		Context: 5,
	}
	d, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		t.Fatal(err)
	}
	t.Error(d)
}
