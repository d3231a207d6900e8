package file

import (
	"bufio"
	"compress/gzip"
	"encoding/csv"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"regexp"

	"github.com/pkg/errors"
	"github.com/relloyd/geniepipe/logger"
)

var reGzipExtension = regexp.MustCompile(`^(.*?)(\.*)(?i)(gzip|gz){0,}$`) // remove multiple leading '.' and trailing (case insensitive) "gz|gzip"

// CSVTableFile is a whole table held in one CSV file with a header row.
// The file is rewritten in full on every Write.
type CSVTableFile struct {
	log     logger.Logger
	name    string
	useGzip bool
}

// NewCSVTableFile returns the CSV file for table in directory.
// Setting useGzip will use gzip compression and make the extension end with '.gz'.
func NewCSVTableFile(log logger.Logger, directory string, table string, extension string, useGzip bool) *CSVTableFile {
	if extension == "" {
		extension = "csv"
	}
	if useGzip {
		extension = reGzipExtension.ReplaceAllString(extension, "$1.gz")
	}
	return &CSVTableFile{
		log:     log,
		name:    filepath.Join(directory, table+"."+extension),
		useGzip: useGzip,
	}
}

// Name returns the path of the file.
func (f *CSVTableFile) Name() string {
	return f.name
}

// Read returns the header and records of the file.
// A file that does not exist yet gives nil slices and no error.
func (f *CSVTableFile) Read() (header []string, records [][]string, err error) {
	fh, err := os.Open(f.name)
	if os.IsNotExist(err) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to open CSV file %v", f.name)
	}
	defer fh.Close()
	var r io.Reader = fh
	if f.useGzip {
		gz, err := gzip.NewReader(fh)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "unable to read gzip CSV file %v", f.name)
		}
		defer gz.Close()
		r = gz
	}
	all, err := csv.NewReader(r).ReadAll()
	if err != nil {
		return nil, nil, errors.Wrapf(err, "unable to read CSV file %v", f.name)
	}
	if len(all) == 0 {
		return nil, nil, nil
	}
	return all[0], all[1:], nil
}

// Write replaces the file with header and records.
// The content is written to a temporary file in the same directory that is then renamed over the old one.
func (f *CSVTableFile) Write(header []string, records [][]string) (err error) {
	tmp, err := ioutil.TempFile(filepath.Dir(f.name), filepath.Base(f.name)+".tmp-")
	if err != nil {
		return errors.Wrapf(err, "unable to create temporary file for %v", f.name)
	}
	defer func() {
		if err != nil {
			_ = tmp.Close()
			_ = os.Remove(tmp.Name())
		}
	}()
	bw := bufio.NewWriter(tmp)
	var w io.Writer = bw
	var gz *gzip.Writer
	if f.useGzip {
		gz = gzip.NewWriter(bw)
		w = gz
	}
	cw := csv.NewWriter(w)
	if err = cw.Write(header); err != nil {
		return errors.Wrapf(err, "unable to write header to %v", f.name)
	}
	if err = cw.WriteAll(records); err != nil { // WriteAll flushes.
		return errors.Wrapf(err, "unable to write records to %v", f.name)
	}
	if gz != nil {
		if err = gz.Close(); err != nil {
			return errors.Wrapf(err, "unable to close gzip writer for %v", f.name)
		}
	}
	if err = bw.Flush(); err != nil {
		return errors.Wrapf(err, "unable to flush %v", f.name)
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrapf(err, "unable to close %v", tmp.Name())
	}
	if err = os.Rename(tmp.Name(), f.name); err != nil {
		return errors.Wrapf(err, "unable to replace %v", f.name)
	}
	f.log.Debug("wrote ", len(records), " records to CSV file ", f.name)
	return nil
}
