package pcx

// A FormatError reports that the input is not a valid PCX file.
type FormatError string

func (e FormatError) Error() string {
	return "pcx: invalid format: " + string(e)
}

// A UsageError reports that the caller used the API incorrectly, for
// example by passing a buffer of the wrong size or writing more rows
// than the image has. It never indicates a problem with the file.
type UsageError string

func (e UsageError) Error() string {
	return "pcx: " + string(e)
}
