package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/9seconds/csvgeo/providers"
)

type UtilsTestSuite struct {
	suite.Suite
}

func (suite *UtilsTestSuite) TestIPInfoProvider() {
	prov, err := makeProvider(configProvider{})

	suite.NoError(err)
	suite.Equal(providers.NameIPInfo, prov.Name())
	suite.NoError(closeProvider(prov))
}

func (suite *UtilsTestSuite) TestUnsupportedProvider() {
	_, err := makeProvider(configProvider{Name: "ipstack"})

	suite.Error(err)
}

func (suite *UtilsTestSuite) TestOfflineProviderNoDatabase() {
	for _, name := range []string{providers.NameMaxmind, providers.NameIP2Location} {
		_, err := makeProvider(configProvider{Name: name})

		suite.ErrorIs(err, providers.ErrDatabasePathIsRequired, name)
	}
}

func (suite *UtilsTestSuite) TestLoadMissingEnvFile() {
	suite.NoError(loadEnvFile(filepath.Join(suite.T().TempDir(), ".env")))
	suite.NoError(loadEnvFile(""))
}

func (suite *UtilsTestSuite) TestLoadEnvFile() {
	path := filepath.Join(suite.T().TempDir(), ".env")

	suite.Require().NoError(os.WriteFile(path, []byte("CSVGEO_TEST_VARIABLE=token\n"), 0o600))
	suite.T().Cleanup(func() {
		os.Unsetenv("CSVGEO_TEST_VARIABLE")
	})

	suite.NoError(loadEnvFile(path))
	suite.Equal("token", os.Getenv("CSVGEO_TEST_VARIABLE"))
}

func TestUtils(t *testing.T) {
	suite.Run(t, &UtilsTestSuite{})
}
