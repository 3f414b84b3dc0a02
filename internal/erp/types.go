package erp

// Explicit request/response shapes for the order-entry OData entities.
// Field names match the remote schema exactly; everything optional is
// omitempty so absent mappings never send empty strings the remote side
// would take literally.

// HeaderCreate is the POST body for SalesOrderHeadersV2.
type HeaderCreate struct {
    DataAreaID                      string `json:"dataAreaId"`
    OrderingCustomerAccountNumber   string `json:"OrderingCustomerAccountNumber"`
    InvoiceCustomerAccountNumber    string `json:"InvoiceCustomerAccountNumber"`
    SalesOrderName                  string `json:"SalesOrderName"`
    CurrencyCode                    string `json:"CurrencyCode"`
    RequestedShippingDate           string `json:"RequestedShippingDate"`
    CustomerRequisitionNumber       string `json:"CustomerRequisitionNumber"`
    CustomersOrderReference         string `json:"CustomersOrderReference"`
    OrderResponsiblePersonnelNumber string `json:"OrderResponsiblePersonnelNumber,omitempty"`
    OrderTakerPersonnelNumber       string `json:"OrderTakerPersonnelNumber,omitempty"`
}

// Header is the subset of SalesOrderHeadersV2 the service reads back.
type Header struct {
    SalesOrderNumber                string `json:"SalesOrderNumber"`
    CustomerRequisitionNumber       string `json:"CustomerRequisitionNumber"`
    CustomersOrderReference         string `json:"CustomersOrderReference"`
    SalesOrderName                  string `json:"SalesOrderName"`
    OrderResponsiblePersonnelNumber string `json:"OrderResponsiblePersonnelNumber"`
}

// HeaderPatch re-asserts the reference/attribution fields the remote
// system's post-line validation is known to overwrite. The order taker
// travels under two names: OrderTakerPersonnelNumber on the settling
// patch, SalesOrderTakerPersonnelNumber on sweep patches.
type HeaderPatch struct {
    CustomerRequisitionNumber       string `json:"CustomerRequisitionNumber,omitempty"`
    CustomersOrderReference         string `json:"CustomersOrderReference,omitempty"`
    SalesOrderName                  string `json:"SalesOrderName,omitempty"`
    OrderResponsiblePersonnelNumber string `json:"OrderResponsiblePersonnelNumber,omitempty"`
    OrderTakerPersonnelNumber       string `json:"OrderTakerPersonnelNumber,omitempty"`
    SalesOrderTakerPersonnelNumber  string `json:"SalesOrderTakerPersonnelNumber,omitempty"`
}

// LineCreate is the POST body for SalesOrderLines.
type LineCreate struct {
    DataAreaID           string  `json:"dataAreaId"`
    SalesOrderNumber     string  `json:"SalesOrderNumber"`
    ItemNumber           string  `json:"ItemNumber"`
    OrderedSalesQuantity float64 `json:"OrderedSalesQuantity"`
    SalesPrice           float64 `json:"SalesPrice"`
    SalesUnitSymbol      string  `json:"SalesUnitSymbol"`
    LineNumber           int     `json:"LineNumber"`
}

type headerList struct {
    Value []Header `json:"value"`
}
