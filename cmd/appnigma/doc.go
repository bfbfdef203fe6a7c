// Command appnigma is a small CLI over the integrations client.
//
//	appnigma credentials get conn_1
//	appnigma proxy conn_1 --method GET --path /services/data/v60.0/limits
//	appnigma query conn_1 "SELECT Id, Name FROM Account"
//
// Configuration falls back to the APPNIGMA_* environment variables.
package main
