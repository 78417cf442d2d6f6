package pkg

import "fmt"

var (
	// These variables are here only to show current version. They are set in makefile during build process
	ShardbenchVersion         = "devel"
	GitRevision               = "devel"
	ShardbenchVersionRevision = fmt.Sprintf("%s-%s", ShardbenchVersion, GitRevision)
)
