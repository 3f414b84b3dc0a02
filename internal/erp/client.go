// Package erp talks to the remote order-entry OData endpoint: header and
// line writes, duplicate lookup by local reference, and the corrective
// header patch. Transport details stay here; the sync engine only sees
// the operation contracts.
package erp

import (
    "bytes"
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strconv"
    "strings"
    "time"

    "golang.org/x/time/rate"

    "ordersync/internal/config"
    "ordersync/internal/metrics"
    "ordersync/internal/model"
)

// ErrHeaderNotFound reports a lookup that matched no remote header.
var ErrHeaderNotFound = errors.New("remote header not found")

type Client struct {
    BaseURL string // resource URL with /data/ suffix
    Company string // dataAreaId
    Currency string
    SalesUnit string
    HTTP    *http.Client
    Limiter *rate.Limiter
}

func NewClient(cfg config.ERPConfig) *Client {
    base := strings.TrimRight(cfg.ResourceURL, "/") + "/data/"
    rps := cfg.RateRPS
    if rps <= 0 {
        rps = 5
    }
    burst := cfg.RateBurst
    if burst <= 0 {
        burst = 5
    }
    return &Client{
        BaseURL:  base,
        Company:  cfg.Company,
        Currency: cfg.Currency,
        SalesUnit: cfg.SalesUnit,
        HTTP:     &http.Client{Timeout: 30 * time.Second},
        Limiter:  rate.NewLimiter(rate.Limit(rps), burst),
    }
}

// FindOrderByReference looks up an existing remote order whose
// CustomerRequisitionNumber matches the local reference. Returns "" when
// none exists. This is the primary duplicate-prevention check; the remote
// side does not enforce reference uniqueness itself.
func (c *Client) FindOrderByReference(ctx context.Context, token, reference string) (string, error) {
    filter := fmt.Sprintf("CustomerRequisitionNumber eq '%s' and dataAreaId eq '%s'", odataQuote(reference), odataQuote(c.Company))
    u := c.BaseURL + "SalesOrderHeadersV2?$filter=" + url.QueryEscape(filter) +
        "&$select=" + url.QueryEscape("SalesOrderNumber,CustomerRequisitionNumber")
    var list headerList
    if err := c.do(ctx, token, "find_order", http.MethodGet, u, nil, &list); err != nil {
        return "", err
    }
    if len(list.Value) == 0 {
        return "", nil
    }
    return list.Value[0].SalesOrderNumber, nil
}

// CreateHeader creates the remote order header and returns the assigned
// sales order number.
func (c *Client) CreateHeader(ctx context.Context, token string, h HeaderCreate) (string, error) {
    if h.DataAreaID == "" {
        h.DataAreaID = c.Company
    }
    var created Header
    if err := c.do(ctx, token, "create_header", http.MethodPost, c.BaseURL+"SalesOrderHeadersV2", h, &created); err != nil {
        return "", err
    }
    return created.SalesOrderNumber, nil
}

// AddLine inserts one order line under an existing header.
func (c *Client) AddLine(ctx context.Context, token string, l LineCreate) error {
    if l.DataAreaID == "" {
        l.DataAreaID = c.Company
    }
    return c.do(ctx, token, "add_line", http.MethodPost, c.BaseURL+"SalesOrderLines", l, nil)
}

// PatchHeader re-asserts reference/attribution fields on a remote header.
func (c *Client) PatchHeader(ctx context.Context, token, salesOrder string, p HeaderPatch) error {
    u := c.BaseURL + fmt.Sprintf("SalesOrderHeadersV2(dataAreaId='%s',SalesOrderNumber='%s')", odataQuote(c.Company), odataQuote(salesOrder))
    return c.do(ctx, token, "patch_header", http.MethodPatch, u, p, nil)
}

// GetHeader fetches the current remote state of one header.
func (c *Client) GetHeader(ctx context.Context, token, salesOrder string) (Header, error) {
    filter := fmt.Sprintf("SalesOrderNumber eq '%s' and dataAreaId eq '%s'", odataQuote(salesOrder), odataQuote(c.Company))
    u := c.BaseURL + "SalesOrderHeadersV2?$filter=" + url.QueryEscape(filter) +
        "&$select=" + url.QueryEscape("SalesOrderNumber,OrderResponsiblePersonnelNumber,CustomerRequisitionNumber,CustomersOrderReference,SalesOrderName")
    var list headerList
    if err := c.do(ctx, token, "get_header", http.MethodGet, u, nil, &list); err != nil {
        return Header{}, err
    }
    if len(list.Value) == 0 {
        return Header{}, ErrHeaderNotFound
    }
    return list.Value[0], nil
}

// HeaderFor builds the create payload for a resolved local order.
func (c *Client) HeaderFor(o model.Order) HeaderCreate {
    h := HeaderCreate{
        DataAreaID:                    c.Company,
        OrderingCustomerAccountNumber: o.CustomerAccount,
        InvoiceCustomerAccountNumber:  o.CustomerAccount,
        SalesOrderName:                o.CustomerName,
        CurrencyCode:                  c.Currency,
        RequestedShippingDate:         o.OrderDate.Format("2006-01-02") + "T12:00:00Z",
        CustomerRequisitionNumber:     o.Number,
        CustomersOrderReference:       o.Salesperson,
    }
    if o.SalespersonNumber != "" {
        h.OrderResponsiblePersonnelNumber = o.SalespersonNumber
        // Order taker mirrors the salesperson at creation; the secretary
        // mapping is only applied by the corrective sweep.
        h.OrderTakerPersonnelNumber = o.SalespersonNumber
    }
    return h
}

// LineFor builds the insert payload for one qualifying order line.
func (c *Client) LineFor(salesOrder string, l model.OrderLine, lineNumber int) LineCreate {
    return LineCreate{
        DataAreaID:           c.Company,
        SalesOrderNumber:     salesOrder,
        ItemNumber:           l.ItemID,
        OrderedSalesQuantity: l.Quantity,
        SalesPrice:           l.UnitPrice,
        SalesUnitSymbol:      c.SalesUnit,
        LineNumber:           lineNumber,
    }
}

func (c *Client) do(ctx context.Context, token, op, method, u string, body, out any) error {
    if c.Limiter != nil {
        if err := c.Limiter.Wait(ctx); err != nil {
            return err
        }
    }
    var rd io.Reader
    if body != nil {
        b, err := json.Marshal(body)
        if err != nil {
            return err
        }
        rd = bytes.NewReader(b)
    }
    req, err := http.NewRequestWithContext(ctx, method, u, rd)
    if err != nil {
        return err
    }
    req.Header.Set("Authorization", "Bearer "+token)
    req.Header.Set("Accept", "application/json")
    if body != nil {
        req.Header.Set("Content-Type", "application/json")
    }
    start := time.Now()
    resp, err := c.HTTP.Do(req)
    if err != nil {
        metrics.RemoteRequests.WithLabelValues(op, "error").Inc()
        return fmt.Errorf("%s: %w", op, err)
    }
    defer func() { _ = resp.Body.Close() }()
    metrics.RemoteRequests.WithLabelValues(op, strconv.Itoa(resp.StatusCode)).Inc()
    metrics.RemoteLatency.WithLabelValues(op).Observe(time.Since(start).Seconds())
    if resp.StatusCode < 200 || resp.StatusCode >= 300 {
        b, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
        return &RemoteError{Op: op, StatusCode: resp.StatusCode, Body: b}
    }
    if out != nil {
        if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
            return fmt.Errorf("%s: decode response: %w", op, err)
        }
    }
    return nil
}

// odataQuote doubles single quotes inside an OData string literal.
func odataQuote(s string) string { return strings.ReplaceAll(s, "'", "''") }
