package source

// Queries are written with '?' placeholders in SQL that MySQL/MariaDB,
// PostgreSQL and SQLite all accept; Dialect.Rebind rewrites placeholders
// where needed.

// workUnitsQuery lists every agent with billing activity on the store's current date.
const workUnitsQuery = `
SELECT dis.billing_date, dis.da_code
FROM rdl_delivery_info_sap dis
WHERE dis.billing_date = CURRENT_DATE
	AND dis.da_code IS NOT NULL
GROUP BY dis.billing_date, dis.da_code;
`

// deliveryInfoQuery returns one row per shipment/product/batch for one
// (billing_date, da_code). Its SELECT list is the cached object schema.
const deliveryInfoQuery = `
SELECT
	dis.billing_doc_no,
	dis.billing_date,
	dis.route,
	dis.da_code,
	dis.da_name,
	dis.vehicle_no,
	sis.gate_pass_no,
	sis.partner,
	sis.matnr,
	sis.batch,
	sis.quantity,
	sis.net_val,
	sis.tp,
	sis.vat,
	sis.billing_type,
	sis.assigment,
	sis.plant,
	sis.team,
	sis.created_on,
	r.route_name,
	CONCAT(c.name1, ' ', c.name2) AS customer_name,
	c.contact_person AS partner_name,
	c.mobile_no AS customer_mobile,
	CONCAT(
		c.street, ', ',
		c.street1, ', ',
		c.street2, ', ',
		c.upazilla, ', ',
		c.district
	) AS customer_address,
	cl.latitude AS customer_latitude,
	cl.longitude AS customer_longitude,
	cl.latitude,
	cl.longitude,
	m.material_name,
	m.producer_company,
	m.brand_name,
	m.brand_description,
	(
		SELECT SUM(d2.due_amount)
		FROM rdl_delivery d2
		WHERE d2.partner = sis.partner
			AND d2.billing_date < CURRENT_DATE
	) AS previous_due_amount,
	d.id,
	COALESCE(d.delivery_status, 'Pending') AS delivery_status,
	COALESCE(d.cash_collection_status, 'Pending') AS cash_collection_status,
	d.return_status,
	d.net_val AS delivered_amount,
	d.cash_collection,
	d.return_amount,
	d.transport_type,
	dl.id AS list_id,
	dl.delivery_quantity,
	dl.return_quantity,
	dl.return_net_val,
	dl.delivery_net_val
FROM rdl_delivery_info_sap dis
	INNER JOIN rpl_sales_info_sap sis ON dis.billing_doc_no = sis.billing_doc_no
	LEFT JOIN rdl_route_wise_depot r ON dis.route = r.route_code
	INNER JOIN rpl_customer c ON sis.partner = c.partner
	LEFT JOIN rdl_customer_location cl ON sis.partner = cl.customer_id
	LEFT JOIN rpl_material m ON sis.matnr = m.matnr
	LEFT JOIN rdl_delivery d ON dis.billing_doc_no = d.billing_doc_no
	LEFT JOIN rdl_delivery_list dl ON sis.matnr = dl.matnr
		AND sis.batch = dl.batch
		AND d.id = dl.delivery_id
WHERE dis.billing_date = ?
	AND dis.da_code = ?;
`
