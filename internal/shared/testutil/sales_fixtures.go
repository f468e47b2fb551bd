package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"
)

// SimpleSalesCSV has one unparseable sales value in the third row
const SimpleSalesCSV = `Sales,Region,Product,Date
100,East,A,2024-01-15
50,East,B,2024-01-20
bad,West,A,2024-02-01
`

// SampleSalesCSV uses the sample export layout: padded, upper case headers,
// US style timestamps, a duplicate row and a NA territory
const SampleSalesCSV = ` ORDERNUMBER , SALES ,ORDERDATE,TERRITORY,PRODUCTLINE,CUSTOMERNAME
10107,2871.00,2/24/2003 0:00,NA,Motorcycles,Land of Toys Inc.
10121,2765.90,5/7/2003 0:00,EMEA,Motorcycles,Reims Collectables
10134,3884.34,7/1/2003 0:00,EMEA,Classic Cars,Lyon Souveniers
10134,3884.34,7/1/2003 0:00,EMEA,Classic Cars,Lyon Souveniers
10145,3746.70,8/25/2003 0:00,APAC,Vintage Cars,Toys4GrownUps.com
10159,5205.27,10/10/2003 0:00,NA,Classic Cars,Corporate Gift Ideas Co.
10168,,10/28/2003 0:00,NA,Trucks and Buses,Technics Stores Inc.
10180,3479.76,not a date,EMEA,Planes,Daedalus Designs Imports
`

// WriteCSV writes content to name inside a fresh temp directory and returns the path
func WriteCSV(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// Latin1 encodes s as ISO-8859-1
func Latin1(t *testing.T, s string) []byte {
	t.Helper()

	encoded, err := charmap.ISO8859_1.NewEncoder().String(s)
	require.NoError(t, err)
	return []byte(encoded)
}
