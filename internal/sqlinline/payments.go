package sqlinline

const QInsertPayment = `--sql b6abf5e5-13c2-44d2-bbe5-438c90075df6
insert into payments (id, user_id, amount_cents, method, status, reference, country, created_at)
values (gen_random_uuid(), $1::uuid, $2::bigint, $3::text, $4::text, $5::text, $6::text, now())
returning id, created_at;
`

const QSelectPaymentsByUser = `--sql 6d0041cb-b821-4fa4-b89f-d4850a083f81
select id, amount_cents, method, status, reference, created_at
from payments
where user_id = $1::uuid
order by created_at desc;
`

const QListPayments = `--sql 56ef5b17-bd13-4bf8-abae-b1746b547907
select p.id, p.user_id, u.name, u.email, p.amount_cents, p.method, p.status, p.reference, p.country, p.created_at
from payments p
join users u on u.id = p.user_id
order by p.created_at desc;
`
