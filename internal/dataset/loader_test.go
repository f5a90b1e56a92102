package dataset

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cloo-solutions/dreamcourse/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
)

type MockSource struct {
	mock.Mock
}

func (m *MockSource) Open(ctx context.Context, name string) (io.ReadCloser, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func body(s string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(s))
}

func cp949(t *testing.T, s string) string {
	t.Helper()
	out, err := korean.EUCKR.NewEncoder().String(s)
	require.NoError(t, err)
	return out
}

func TestReadCSV(t *testing.T) {
	table, err := ReadCSV("occupations", strings.NewReader(" 직업명 ,영역,추천학과\n교사,교육,\"교육학과, 국어교육과\"\n\n사회복지사,사회복지\n"))

	require.NoError(t, err)
	assert.Equal(t, []string{"직업명", "영역", "추천학과"}, table.Header)
	require.Len(t, table.Rows, 2)
	assert.Equal(t, "교육학과, 국어교육과", table.Cell(0, 2))
	assert.Equal(t, []string{"사회복지사", "사회복지", ""}, table.Rows[1])
}

func TestReadCSV_Empty(t *testing.T) {
	_, err := ReadCSV("x", strings.NewReader(""))

	assert.Error(t, err)
}

func TestLoader_LoadTable_CP949(t *testing.T) {
	src := new(MockSource)
	src.On("Open", mock.Anything, "major.csv").Return(body(cp949(t, "직업명,영역,추천학과\n의사,의료,의예과\n")), nil)

	table, err := NewLoader(src).LoadTable(context.Background(), "occupations", File{Path: "major.csv", Encoding: "cp949"})

	require.NoError(t, err)
	assert.Equal(t, "occupations", table.Name)
	assert.Equal(t, "의사", table.Cell(0, 0))
	src.AssertExpectations(t)
}

func TestLoader_LoadTable_UTF8BOM(t *testing.T) {
	src := new(MockSource)
	src.On("Open", mock.Anything, "curriculum.csv").Return(body("\xEF\xBB\xBF학과,학년\n컴퓨터공학과,1\n"), nil)

	table, err := NewLoader(src).LoadTable(context.Background(), "curricula", File{Path: "curriculum.csv", Encoding: "utf-8"})

	require.NoError(t, err)
	_, ok := table.ColumnIndex("학과")
	assert.True(t, ok)
}

func TestLoader_LoadTable_UnsupportedEncoding(t *testing.T) {
	src := new(MockSource)
	src.On("Open", mock.Anything, "a.csv").Return(body("a\n1\n"), nil)

	_, err := NewLoader(src).LoadTable(context.Background(), "a", File{Path: "a.csv", Encoding: "latin-9"})

	assert.ErrorIs(t, err, domain.ErrDatasetLoadFailed)
	assert.Contains(t, err.Error(), "unsupported encoding")
}

func TestLoader_Load_SourceError(t *testing.T) {
	src := new(MockSource)
	src.On("Open", mock.Anything, "major.csv").Return(nil, errors.New("no such file"))

	ds, err := NewLoader(src).Load(context.Background(), Files{
		Occupations: File{Path: "major.csv"},
		Curricula:   File{Path: "curriculum.csv"},
		Admissions:  File{Path: "admission.csv"},
	})

	assert.Nil(t, ds)
	assert.ErrorIs(t, err, domain.ErrDatasetLoadFailed)
	assert.Contains(t, err.Error(), "occupations")
}

func TestLoader_Load(t *testing.T) {
	src := new(MockSource)
	src.On("Open", mock.Anything, "major.csv").Return(body("직업명,영역,추천학과\n"), nil)
	src.On("Open", mock.Anything, "curriculum.csv").Return(body("학과,학년,학기\n"), nil)
	src.On("Open", mock.Anything, "admission.csv").Return(body("대학명,학과\n"), nil)

	ds, err := NewLoader(src).Load(context.Background(), Files{
		Occupations: File{Path: "major.csv"},
		Curricula:   File{Path: "curriculum.csv"},
		Admissions:  File{Path: "admission.csv"},
	})

	require.NoError(t, err)
	assert.Equal(t, "occupations", ds.Occupations.Name)
	assert.Equal(t, "curricula", ds.Curricula.Name)
	assert.Equal(t, "admissions", ds.Admissions.Name)
	src.AssertExpectations(t)
}

func TestFileSource_Open(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.csv"), []byte("x\n"), 0o600))

	rc, err := FileSource{Dir: dir}.Open(context.Background(), "a.csv")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "x\n", string(data))
}

type MockObjectGetter struct {
	mock.Mock
}

func (m *MockObjectGetter) GetObject(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

func TestS3Source_Open_JoinsPrefix(t *testing.T) {
	getter := new(MockObjectGetter)
	getter.On("GetObject", mock.Anything, "datasets/major.csv").Return(body("x"), nil)

	rc, err := S3Source{Client: getter, Prefix: "datasets/"}.Open(context.Background(), "major.csv")

	require.NoError(t, err)
	rc.Close()
	getter.AssertExpectations(t)
}
